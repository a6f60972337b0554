package application

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

func newTestApplication(category domain.VacationCategory) *domain.Application {
	person := &domain.Person{ID: 1, FirstName: "Marlene", LastName: "Muster"}
	replacement := &domain.Person{ID: 2, FirstName: "Theo", LastName: "Vertreter"}

	return &domain.Application{
		ID:           42,
		Person:       person,
		StartDate:    date("2026-03-02"),
		StartTime:    "08:00",
		EndDate:      date("2026-03-06"),
		EndTime:      "12:00",
		DayLength:    domain.DayLengthFull,
		VacationType: &domain.VacationType{ID: 3, Category: category, MessageKey: "application.data.vacationType"},
		Hours:        decimal.NewNullDecimal(decimal.NewFromInt(8)),
		Reason:       "Familienfeier",
		Address:      "Musterstraße 1",
		TeamInformed: true,
		HolidayReplacements: []*domain.HolidayReplacement{
			{Person: replacement, Note: "bitte Postfach prüfen"},
		},
		Status: domain.ApplicationStatusWaiting,
	}
}

func TestMapToFormCopiesEveryField(t *testing.T) {
	application := newTestApplication(domain.VacationCategoryOvertime)

	form := MapToForm(application)

	require.Equal(t, application.ID, form.ID)
	require.Same(t, application.Person, form.Person)
	require.Equal(t, application.StartDate, *form.StartDate)
	require.Equal(t, application.StartTime, form.StartTime)
	require.Equal(t, application.EndDate, *form.EndDate)
	require.Equal(t, application.EndTime, form.EndTime)
	require.Same(t, application.VacationType, form.VacationType)
	require.Equal(t, application.DayLength, form.DayLength)
	require.True(t, application.Hours.Decimal.Equal(form.Hours.Decimal))
	require.Equal(t, application.Reason, form.Reason)
	require.Equal(t, application.Address, form.Address)
	require.Equal(t, application.TeamInformed, form.TeamInformed)
	require.Len(t, form.HolidayReplacements, 1)
	require.Equal(t, "bitte Postfach prüfen", form.HolidayReplacements[0].Note)
	require.Equal(t, application.HolidayReplacementPersons(), form.HolidayReplacementPersons())

	// 修改表单不影响原申请
	form.HolidayReplacements[0].Note = "changed"
	require.Equal(t, "bitte Postfach prüfen", application.HolidayReplacements[0].Note)
}

func TestMapToApplicationRoundTrip(t *testing.T) {
	for _, category := range []domain.VacationCategory{
		domain.VacationCategoryHoliday,
		domain.VacationCategorySpecialLeave,
		domain.VacationCategoryUnpaidLeave,
		domain.VacationCategoryOvertime,
	} {
		t.Run(string(category), func(t *testing.T) {
			original := newTestApplication(category)

			mapped := MapToApplication(MapToForm(original))

			require.Equal(t, original.ID, mapped.ID)
			require.Same(t, original.Person, mapped.Person)
			require.Equal(t, original.StartDate, mapped.StartDate)
			require.Equal(t, original.StartTime, mapped.StartTime)
			require.Equal(t, original.EndDate, mapped.EndDate)
			require.Equal(t, original.EndTime, mapped.EndTime)
			require.Same(t, original.VacationType, mapped.VacationType)
			require.Equal(t, original.DayLength, mapped.DayLength)
			require.Equal(t, original.Reason, mapped.Reason)
			require.Equal(t, original.Address, mapped.Address)
			require.Equal(t, original.TeamInformed, mapped.TeamInformed)
			require.Equal(t, original.HolidayReplacementPersons(), mapped.HolidayReplacementPersons())

			if category == domain.VacationCategoryOvertime {
				require.True(t, mapped.Hours.Valid)
				require.True(t, mapped.Hours.Decimal.Equal(decimal.NewFromInt(8)))
			} else {
				require.False(t, mapped.Hours.Valid)
			}
		})
	}
}

func TestMergeKeepsWorkflowFields(t *testing.T) {
	remindDate := date("2026-02-20")
	existing := newTestApplication(domain.VacationCategoryHoliday)
	existing.Status = domain.ApplicationStatusTemporaryAllowed
	existing.ApplicationDate = date("2026-02-15")
	existing.RemindDate = &remindDate
	existing.Version = 7

	startDate := date("2026-04-01")
	endDate := date("2026-04-01")
	form := &Form{
		Person:       existing.Person,
		StartDate:    &startDate,
		EndDate:      &endDate,
		VacationType: &domain.VacationType{ID: 9, Category: domain.VacationCategoryOvertime},
		DayLength:    domain.DayLengthMorning,
		Hours:        decimal.NewNullDecimal(decimal.RequireFromString("3.5")),
		Reason:       "Arzttermin",
	}

	merged := Merge(existing, form)

	require.NotSame(t, existing, merged)
	require.Equal(t, existing.ID, merged.ID)
	require.Equal(t, domain.ApplicationStatusTemporaryAllowed, merged.Status)
	require.Equal(t, existing.ApplicationDate, merged.ApplicationDate)
	require.Equal(t, &remindDate, merged.RemindDate)
	require.Equal(t, int32(7), merged.Version)

	require.Equal(t, startDate, merged.StartDate)
	require.Equal(t, domain.DayLengthMorning, merged.DayLength)
	require.Equal(t, "", merged.StartTime)
	require.Empty(t, merged.HolidayReplacements)
	require.True(t, merged.Hours.Decimal.Equal(decimal.RequireFromString("3.5")))

	// 原申请不被修改
	require.Equal(t, domain.DayLengthFull, existing.DayLength)
	require.Len(t, existing.HolidayReplacements, 1)
}

func TestMergeClearsHoursWhenCategoryIsNotOvertime(t *testing.T) {
	existing := newTestApplication(domain.VacationCategoryOvertime)
	form := MapToForm(existing)
	form.VacationType = &domain.VacationType{ID: 1, Category: domain.VacationCategoryHoliday}

	merged := Merge(existing, form)

	require.False(t, merged.Hours.Valid)
}
