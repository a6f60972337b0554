package sickdays

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

func requireDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

func TestSickDaysAddDays(t *testing.T) {
	sickDays := NewSickDays()
	requireDecimal(t, "0", sickDays.Total())
	requireDecimal(t, "0", sickDays.WithAub())

	sickDays.AddDays(SickDayTypeTotal, decimal.NewFromInt(3))
	sickDays.AddDays(SickDayTypeTotal, decimal.RequireFromString("0.5"))
	sickDays.AddDays(SickDayTypeWithAub, decimal.NewFromInt(2))

	requireDecimal(t, "3.5", sickDays.Total())
	requireDecimal(t, "2", sickDays.WithAub())
}

func TestGetSickDays(t *testing.T) {
	person := &domain.Person{ID: 1}

	// 2026-03-02 是周一
	week := sickNote(person, "2026-03-02", "2026-03-08")
	week.AubStartDate = datePtr("2026-03-04")
	week.AubEndDate = datePtr("2026-03-10")

	halfDay := sickNote(person, "2026-03-11", "2026-03-11")
	halfDay.DayLength = domain.DayLengthMorning

	cancelled := sickNote(person, "2026-03-12", "2026-03-13")
	cancelled.Status = domain.SickNoteStatusCancelled

	child := sickNote(person, "2026-03-16", "2026-03-17")
	child.Category = domain.SickNoteCategorySickNoteChild
	child.AubStartDate = datePtr("2026-03-16")
	child.AubEndDate = datePtr("2026-03-16")

	statistics := &DetailedStatistics{Person: person, SickNotes: []*domain.SickNote{week, halfDay, cancelled, child}}

	sickDays := statistics.GetSickDays(date("2026-01-01"), date("2026-12-31"))
	requireDecimal(t, "5.5", sickDays.Total())
	// AUB 只统计在病假条范围内的部分：周三到周五
	requireDecimal(t, "3", sickDays.WithAub())

	childSickDays := statistics.GetChildSickDays(date("2026-01-01"), date("2026-12-31"))
	requireDecimal(t, "2", childSickDays.Total())
	requireDecimal(t, "1", childSickDays.WithAub())
}

func TestGetSickDaysIsClippedToPeriod(t *testing.T) {
	person := &domain.Person{ID: 1}
	overYearEnd := sickNote(person, "2025-12-29", "2026-01-02")
	overYearEnd.AubStartDate = datePtr("2025-12-29")
	overYearEnd.AubEndDate = datePtr("2025-12-31")

	statistics := &DetailedStatistics{Person: person, SickNotes: []*domain.SickNote{overYearEnd}}

	sickDays := statistics.GetSickDays(date("2026-01-01"), date("2026-12-31"))
	requireDecimal(t, "2", sickDays.Total())
	requireDecimal(t, "0", sickDays.WithAub())

	sickDays = statistics.GetSickDays(date("2025-01-01"), date("2025-12-31"))
	requireDecimal(t, "3", sickDays.Total())
	requireDecimal(t, "3", sickDays.WithAub())
}
