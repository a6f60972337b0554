package absence

import (
	"time"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

type Type string

const (
	TypeApplication Type = "APPLICATION"
	TypeSickNote    Type = "SICK_NOTE"
)

// Absence 是一段带时区的缺勤时间，结束时间不包含在内
type Absence struct {
	Type      Type             `json:"type"`
	SourceID  int64            `json:"sourceId"`
	Person    *domain.Person   `json:"person"`
	StartDate time.Time        `json:"startDate"`
	EndDate   time.Time        `json:"endDate"`
	DayLength domain.DayLength `json:"dayLength"`
}

var (
	openApplicationStatuses = []domain.ApplicationStatus{
		domain.ApplicationStatusAllowed,
		domain.ApplicationStatusWaiting,
		domain.ApplicationStatusTemporaryAllowed,
		domain.ApplicationStatusAllowedCancellationRequested,
	}
	openSickNoteStatuses = []domain.SickNoteStatus{
		domain.SickNoteStatusActive,
	}
)

type Repository interface {
	GetApplicationsByStatusesSince(statuses []domain.ApplicationStatus, since time.Time, personIDs []int64) ([]*domain.Application, error)
	GetSickNotesByStatusesSince(statuses []domain.SickNoteStatus, since time.Time, personIDs []int64) ([]*domain.SickNote, error)
}

type Service struct {
	repository Repository
	times      *TimeConfiguration
}

func NewService(repo Repository, times *TimeConfiguration) *Service {
	return &Service{
		repository: repo,
		times:      times,
	}
}

// GetOpenAbsencesSince 返回指定人员自 since 起尚未结束的缺勤，先是请假申请，再是病假
func (s *Service) GetOpenAbsencesSince(persons []*domain.Person, since time.Time) ([]*Absence, error) {
	personIDs := make([]int64, 0, len(persons))
	for _, person := range persons {
		personIDs = append(personIDs, person.ID)
	}
	return s.openAbsences(since, personIDs)
}

func (s *Service) GetOpenAbsencesSinceForAll(since time.Time) ([]*Absence, error) {
	return s.openAbsences(since, nil)
}

func (s *Service) openAbsences(since time.Time, personIDs []int64) ([]*Absence, error) {
	applications, err := s.repository.GetApplicationsByStatusesSince(openApplicationStatuses, since, personIDs)
	if err != nil {
		return nil, err
	}

	sickNotes, err := s.repository.GetSickNotesByStatusesSince(openSickNoteStatuses, since, personIDs)
	if err != nil {
		return nil, err
	}

	absences := make([]*Absence, 0, len(applications)+len(sickNotes))
	for _, application := range applications {
		start, end := s.period(application.StartDate, application.EndDate, application.DayLength)
		absences = append(absences, &Absence{
			Type:      TypeApplication,
			SourceID:  application.ID,
			Person:    application.Person,
			StartDate: start,
			EndDate:   end,
			DayLength: application.DayLength,
		})
	}
	for _, sickNote := range sickNotes {
		start, end := s.period(sickNote.StartDate, sickNote.EndDate, sickNote.DayLength)
		absences = append(absences, &Absence{
			Type:      TypeSickNote,
			SourceID:  sickNote.ID,
			Person:    sickNote.Person,
			StartDate: start,
			EndDate:   end,
			DayLength: sickNote.DayLength,
		})
	}

	return absences, nil
}

// period 全天为 [开始日 00:00, 结束日次日 00:00)，半天按配置的上午或下午时间
func (s *Service) period(startDate, endDate time.Time, dayLength domain.DayLength) (time.Time, time.Time) {
	switch dayLength {
	case domain.DayLengthMorning:
		return s.at(startDate, 0, s.times.MorningStart), s.at(startDate, 0, s.times.MorningEnd)
	case domain.DayLengthNoon:
		return s.at(startDate, 0, s.times.NoonStart), s.at(startDate, 0, s.times.NoonEnd)
	default:
		return s.at(startDate, 0, 0), s.at(endDate, 1, 0)
	}
}

// at 按挂钟时间构造，夏令时切换日也保持配置的钟点
func (s *Service) at(date time.Time, addDays int, clock time.Duration) time.Time {
	return time.Date(
		date.Year(), date.Month(), date.Day()+addDays,
		int(clock/time.Hour), int(clock%time.Hour/time.Minute), int(clock%time.Minute/time.Second),
		0, s.times.Location,
	)
}
