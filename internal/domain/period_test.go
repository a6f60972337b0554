package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	tests := map[string]time.Time{
		"2019-12-10":   date(2019, time.December, 10),
		" 10.12.2019 ": date(2019, time.December, 10),
		"1.2.2020":     date(2020, time.February, 1),
		"1.2.20":       date(2020, time.February, 1),
	}
	for value, want := range tests {
		got, ok := ParseDate(value)
		assert.True(t, ok, value)
		assert.Equal(t, want, got, value)
	}

	for _, value := range []string{"", "tomorrow", "2019-13-01", "31.02.2019"} {
		_, ok := ParseDate(value)
		assert.False(t, ok, value)
	}
}

func TestDayLengthFraction(t *testing.T) {
	assert.True(t, DayLengthFull.Fraction().Equal(decimal.NewFromInt(1)))
	assert.True(t, DayLengthMorning.Fraction().Equal(decimal.RequireFromString("0.5")))
	assert.True(t, DayLengthNoon.Fraction().Equal(decimal.RequireFromString("0.5")))
	assert.False(t, DayLength("EVENING").IsValid())
}

func TestWorkDays(t *testing.T) {
	// 2019-12-09 是周一
	assert.Equal(t, 5, WorkDays(date(2019, time.December, 9), date(2019, time.December, 15)))
	assert.Equal(t, 0, WorkDays(date(2019, time.December, 14), date(2019, time.December, 15)))
	assert.Equal(t, 1, WorkDays(date(2019, time.December, 10), date(2019, time.December, 10)))
	assert.Equal(t, 0, WorkDays(date(2019, time.December, 11), date(2019, time.December, 10)))
}

func TestOverlap(t *testing.T) {
	start, end, ok := Overlap(
		date(2019, time.December, 20), date(2020, time.January, 5),
		date(2020, time.January, 1), date(2020, time.December, 31),
	)
	assert.True(t, ok)
	assert.Equal(t, date(2020, time.January, 1), start)
	assert.Equal(t, date(2020, time.January, 5), end)

	_, _, ok = Overlap(
		date(2019, time.December, 1), date(2019, time.December, 5),
		date(2020, time.January, 1), date(2020, time.December, 31),
	)
	assert.False(t, ok)
}

func TestNewFilterPeriod(t *testing.T) {
	today := time.Date(2021, time.June, 15, 13, 45, 0, 0, time.UTC)

	period := NewFilterPeriod(nil, nil, today)
	assert.Equal(t, date(2021, time.January, 1), period.StartDate)
	assert.Equal(t, date(2021, time.December, 31), period.EndDate)
	assert.True(t, period.IsValid())

	start := time.Date(2021, time.March, 3, 10, 0, 0, 0, time.UTC)
	period = NewFilterPeriod(&start, nil, today)
	assert.Equal(t, date(2021, time.March, 3), period.StartDate)
	assert.Equal(t, date(2021, time.December, 31), period.EndDate)

	end := date(2021, time.February, 1)
	period = NewFilterPeriod(&start, &end, today)
	assert.False(t, period.IsValid())
}
