package application

import (
	"github.com/shopspring/decimal"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

func MapToForm(application *domain.Application) *Form {
	startDate := application.StartDate
	endDate := application.EndDate

	return &Form{
		ID:                  application.ID,
		Person:              application.Person,
		StartDate:           &startDate,
		StartTime:           application.StartTime,
		EndDate:             &endDate,
		EndTime:             application.EndTime,
		VacationType:        application.VacationType,
		DayLength:           application.DayLength,
		Hours:               application.Hours,
		Reason:              application.Reason,
		Address:             application.Address,
		TeamInformed:        application.TeamInformed,
		HolidayReplacements: copyHolidayReplacements(application.HolidayReplacements),
	}
}

func MapToApplication(form *Form) *domain.Application {
	return Merge(&domain.Application{ID: form.ID}, form)
}

// Merge 返回一个新的申请：保留 application 中表单不涉及的字段（状态、日期记录、版本等），其余取自表单。
// 小时数只在加班调休时才会复制
func Merge(application *domain.Application, form *Form) *domain.Application {
	merged := *application

	merged.Person = form.Person

	if form.StartDate != nil {
		merged.StartDate = domain.Date(*form.StartDate)
	}
	merged.StartTime = form.StartTime

	if form.EndDate != nil {
		merged.EndDate = domain.Date(*form.EndDate)
	}
	merged.EndTime = form.EndTime

	merged.VacationType = form.VacationType
	merged.DayLength = form.DayLength
	merged.Reason = form.Reason
	merged.Address = form.Address
	merged.TeamInformed = form.TeamInformed

	if merged.VacationType.IsOvertime() {
		merged.Hours = form.Hours
	} else {
		merged.Hours = decimal.NullDecimal{}
	}

	merged.HolidayReplacements = copyHolidayReplacements(form.HolidayReplacements)

	return &merged
}

func copyHolidayReplacements(replacements []*domain.HolidayReplacement) []*domain.HolidayReplacement {
	result := make([]*domain.HolidayReplacement, 0, len(replacements))
	for _, replacement := range replacements {
		result = append(result, &domain.HolidayReplacement{
			Person: replacement.Person,
			Note:   replacement.Note,
		})
	}
	return result
}
