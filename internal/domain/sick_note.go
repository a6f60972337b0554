package domain

import "time"

type SickNoteCategory string

const (
	SickNoteCategorySickNote      SickNoteCategory = "SICK_NOTE"
	SickNoteCategorySickNoteChild SickNoteCategory = "SICK_NOTE_CHILD"
)

type SickNoteStatus string

const (
	SickNoteStatusActive              SickNoteStatus = "ACTIVE"
	SickNoteStatusCancelled           SickNoteStatus = "CANCELLED"
	SickNoteStatusConvertedToVacation SickNoteStatus = "CONVERTED_TO_VACATION"
)

type SickNote struct {
	ID           int64            `json:"id"`
	Person       *Person          `json:"person"`
	Applier      *Person          `json:"applier"`
	Category     SickNoteCategory `json:"category"`
	StartDate    time.Time        `json:"startDate"`
	EndDate      time.Time        `json:"endDate"`
	DayLength    DayLength        `json:"dayLength"`
	AubStartDate *time.Time       `json:"aubStartDate"`
	AubEndDate   *time.Time       `json:"aubEndDate"`
	Status       SickNoteStatus   `json:"status"`
	CreatedAt    time.Time        `json:"createdAt"`
	Version      int32            `json:"-"`
}

// AUB 即医生开具的病假证明
func (s *SickNote) IsAubPresent() bool {
	return s.AubStartDate != nil && s.AubEndDate != nil
}

func (s *SickNote) IsActive() bool {
	return s.Status == SickNoteStatusActive
}
