package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const ISODateLayout = "2006-01-02"

type DayLength string

const (
	DayLengthFull    DayLength = "FULL"
	DayLengthMorning DayLength = "MORNING"
	DayLengthNoon    DayLength = "NOON"
)

func (d DayLength) IsValid() bool {
	switch d {
	case DayLengthFull, DayLengthMorning, DayLengthNoon:
		return true
	default:
		return false
	}
}

func (d DayLength) IsHalfDay() bool {
	return d == DayLengthMorning || d == DayLengthNoon
}

// 全天为 1，半天为 0.5
func (d DayLength) Fraction() decimal.Decimal {
	if d.IsHalfDay() {
		return decimal.NewFromFloat(0.5)
	}
	return decimal.NewFromInt(1)
}

// Date 截掉时间部分，统一到 UTC 零点
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var acceptedDateLayouts = []string{
	ISODateLayout,
	"02.01.2006",
	"2.1.2006",
	"2.1.06",
}

// ParseDate 解析用户输入的日期，失败时返回 false
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return Date(t), true
		}
	}
	return time.Time{}, false
}

func IsWorkDay(day time.Time) bool {
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// WorkDays 统计闭区间 [from, to] 内的工作日数量（周一至周五）
func WorkDays(from, to time.Time) int {
	from, to = Date(from), Date(to)
	count := 0
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if IsWorkDay(day) {
			count++
		}
	}
	return count
}

// Overlap 返回两个闭区间的交集，没有交集时 ok 为 false
func Overlap(startA, endA, startB, endB time.Time) (start, end time.Time, ok bool) {
	start, end = Date(startA), Date(endA)
	if b := Date(startB); b.After(start) {
		start = b
	}
	if b := Date(endB); b.Before(end) {
		end = b
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

type FilterPeriod struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// NewFilterPeriod 缺省的开始和结束日期分别取 today 所在年份的第一天和最后一天
func NewFilterPeriod(start, end *time.Time, today time.Time) FilterPeriod {
	period := FilterPeriod{
		StartDate: time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(today.Year(), time.December, 31, 0, 0, 0, 0, time.UTC),
	}
	if start != nil {
		period.StartDate = Date(*start)
	}
	if end != nil {
		period.EndDate = Date(*end)
	}
	return period
}

func (p FilterPeriod) IsValid() bool {
	return !p.StartDate.After(p.EndDate)
}
