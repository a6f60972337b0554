package sickdays

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

type SickDayType string

const (
	// 病假天数总计
	SickDayTypeTotal SickDayType = "TOTAL"
	// 其中有医生证明（AUB）的天数
	SickDayTypeWithAub SickDayType = "WITH_AUB"
)

type SickDays struct {
	Days map[SickDayType]decimal.Decimal `json:"days"`
}

func NewSickDays() SickDays {
	return SickDays{
		Days: map[SickDayType]decimal.Decimal{
			SickDayTypeTotal:   decimal.Zero,
			SickDayTypeWithAub: decimal.Zero,
		},
	}
}

func (s SickDays) AddDays(sickDayType SickDayType, days decimal.Decimal) {
	s.Days[sickDayType] = s.Days[sickDayType].Add(days)
}

func (s SickDays) Total() decimal.Decimal {
	return s.Days[SickDayTypeTotal]
}

func (s SickDays) WithAub() decimal.Decimal {
	return s.Days[SickDayTypeWithAub]
}

// DetailedStatistics 是某个人在统计区间内的病假明细
type DetailedStatistics struct {
	PersonnelNumber string             `json:"personnelNumber"`
	Person          *domain.Person     `json:"person"`
	Departments     []string           `json:"departments"`
	SickNotes       []*domain.SickNote `json:"sickNotes"`
}

func (s *DetailedStatistics) GetSickDays(from, to time.Time) SickDays {
	return s.sickDaysOf(domain.SickNoteCategorySickNote, from, to)
}

func (s *DetailedStatistics) GetChildSickDays(from, to time.Time) SickDays {
	return s.sickDaysOf(domain.SickNoteCategorySickNoteChild, from, to)
}

// 只统计 [from, to] 内的工作日，半天病假按 0.5 天计
func (s *DetailedStatistics) sickDaysOf(category domain.SickNoteCategory, from, to time.Time) SickDays {
	sickDays := NewSickDays()

	for _, sickNote := range s.SickNotes {
		if sickNote.Category != category || !sickNote.IsActive() {
			continue
		}

		start, end, ok := domain.Overlap(sickNote.StartDate, sickNote.EndDate, from, to)
		if !ok {
			continue
		}
		fraction := sickNote.DayLength.Fraction()
		sickDays.AddDays(SickDayTypeTotal, decimal.NewFromInt(int64(domain.WorkDays(start, end))).Mul(fraction))

		if !sickNote.IsAubPresent() {
			continue
		}
		aubStart, aubEnd, ok := domain.Overlap(*sickNote.AubStartDate, *sickNote.AubEndDate, start, end)
		if !ok {
			continue
		}
		sickDays.AddDays(SickDayTypeWithAub, decimal.NewFromInt(int64(domain.WorkDays(aubStart, aubEnd))).Mul(fraction))
	}

	return sickDays
}
