package domain

import (
	"errors"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidStatusTransition = errors.New("invalid application status transition")

type ApplicationStatus string

const (
	// 提交申请后的初始状态
	ApplicationStatusWaiting ApplicationStatus = "WAITING"
	// 两级审批中部门负责人已同意，等待二级审批人处理，仍按待审批处理
	ApplicationStatusTemporaryAllowed ApplicationStatus = "TEMPORARY_ALLOWED"
	ApplicationStatusAllowed          ApplicationStatus = "ALLOWED"
	// 已批准的申请由申请人发起撤销，等待办公室处理
	ApplicationStatusAllowedCancellationRequested ApplicationStatus = "ALLOWED_CANCELLATION_REQUESTED"
	// 未批准前由申请人撤回
	ApplicationStatusRevoked ApplicationStatus = "REVOKED"
	// 未批准前被拒绝
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
	// 批准后被取消
	ApplicationStatusCancelled ApplicationStatus = "CANCELLED"
)

var applicationStatusTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusWaiting: {
		ApplicationStatusTemporaryAllowed,
		ApplicationStatusAllowed,
		ApplicationStatusRejected,
		ApplicationStatusRevoked,
	},
	ApplicationStatusTemporaryAllowed: {
		ApplicationStatusAllowed,
		ApplicationStatusRejected,
		ApplicationStatusRevoked,
	},
	ApplicationStatusAllowed: {
		ApplicationStatusAllowedCancellationRequested,
		ApplicationStatusCancelled,
	},
	ApplicationStatusAllowedCancellationRequested: {
		ApplicationStatusAllowed,
		ApplicationStatusCancelled,
	},
}

func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	return slices.Contains(applicationStatusTransitions[s], next)
}

func (s ApplicationStatus) IsWaiting() bool {
	return s == ApplicationStatusWaiting || s == ApplicationStatusTemporaryAllowed
}

func (s ApplicationStatus) IsFinal() bool {
	return len(applicationStatusTransitions[s]) == 0
}

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationStatusWaiting,
		ApplicationStatusTemporaryAllowed,
		ApplicationStatusAllowed,
		ApplicationStatusAllowedCancellationRequested,
		ApplicationStatusRevoked,
		ApplicationStatusRejected,
		ApplicationStatusCancelled:
		return true
	default:
		return false
	}
}

type VacationCategory string

const (
	VacationCategoryHoliday      VacationCategory = "HOLIDAY"
	VacationCategorySpecialLeave VacationCategory = "SPECIALLEAVE"
	VacationCategoryUnpaidLeave  VacationCategory = "UNPAIDLEAVE"
	VacationCategoryOvertime     VacationCategory = "OVERTIME"
)

type VacationType struct {
	ID         int64            `json:"id"`
	Category   VacationCategory `json:"category"`
	MessageKey string           `json:"messageKey"`
	Active     bool             `json:"active"`
}

func (v *VacationType) IsOvertime() bool {
	return v != nil && v.Category == VacationCategoryOvertime
}

// 特殊假和无薪假必须填写原因
func (v *VacationType) RequiresReason() bool {
	return v != nil && (v.Category == VacationCategorySpecialLeave || v.Category == VacationCategoryUnpaidLeave)
}

type HolidayReplacement struct {
	Person *Person `json:"person"`
	Note   string  `json:"note"`
}

type Application struct {
	ID                  int64                 `json:"id"`
	Person              *Person               `json:"person"`
	Applier             *Person               `json:"applier"`
	Boss                *Person               `json:"boss"`
	StartDate           time.Time             `json:"startDate"`
	StartTime           string                `json:"startTime"`
	EndDate             time.Time             `json:"endDate"`
	EndTime             string                `json:"endTime"`
	DayLength           DayLength             `json:"dayLength"`
	VacationType        *VacationType         `json:"vacationType"`
	Hours               decimal.NullDecimal   `json:"hours"`
	Reason              string                `json:"reason"`
	Address             string                `json:"address"`
	TeamInformed        bool                  `json:"teamInformed"`
	HolidayReplacements []*HolidayReplacement `json:"holidayReplacements"`
	Status              ApplicationStatus     `json:"status"`
	ApplicationDate     time.Time             `json:"applicationDate"`
	RemindDate          *time.Time            `json:"remindDate"`
	EditedDate          *time.Time            `json:"editedDate"`
	CancelDate          *time.Time            `json:"cancelDate"`
	CreatedAt           time.Time             `json:"createdAt"`
	Version             int32                 `json:"-"`
}

// TransitionTo 按状态机修改申请状态
func (a *Application) TransitionTo(next ApplicationStatus) error {
	if !a.Status.CanTransitionTo(next) {
		return ErrInvalidStatusTransition
	}
	a.Status = next
	return nil
}

func (a *Application) HolidayReplacementPersons() []*Person {
	persons := make([]*Person, 0, len(a.HolidayReplacements))
	for _, replacement := range a.HolidayReplacements {
		persons = append(persons, replacement.Person)
	}
	return persons
}
