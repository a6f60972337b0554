package sickdays

import (
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

type fakeRepository struct {
	persons     []*domain.Person
	departments []*domain.Department
	basedata    map[int64]*domain.PersonBasedata
	sickNotes   []*domain.SickNote

	// 记录按人员查询病假条时传入的 ID
	queriedPersonIDs []int64
	queriedAll       bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		basedata: make(map[int64]*domain.PersonBasedata),
	}
}

func (f *fakeRepository) addPerson(id int64, firstName, lastName string, roles ...domain.Role) *domain.Person {
	person := &domain.Person{
		ID:          id,
		FirstName:   firstName,
		LastName:    lastName,
		Permissions: append([]domain.Role{domain.RoleUser}, roles...),
	}
	f.persons = append(f.persons, person)
	return person
}

func (f *fakeRepository) overlaps(sickNote *domain.SickNote, statuses []domain.SickNoteStatus, from, to time.Time) bool {
	return slices.Contains(statuses, sickNote.Status) && !sickNote.StartDate.After(to) && !sickNote.EndDate.Before(from)
}

func (f *fakeRepository) GetSickNotesByStatusesAndPeriod(statuses []domain.SickNoteStatus, from, to time.Time) ([]*domain.SickNote, error) {
	f.queriedAll = true
	result := make([]*domain.SickNote, 0)
	for _, sickNote := range f.sickNotes {
		if f.overlaps(sickNote, statuses, from, to) {
			result = append(result, sickNote)
		}
	}
	return result, nil
}

func (f *fakeRepository) GetSickNotesByStatusesPersonsAndPeriod(statuses []domain.SickNoteStatus, personIDs []int64, from, to time.Time) ([]*domain.SickNote, error) {
	f.queriedPersonIDs = personIDs
	result := make([]*domain.SickNote, 0)
	for _, sickNote := range f.sickNotes {
		if f.overlaps(sickNote, statuses, from, to) && slices.Contains(personIDs, sickNote.Person.ID) {
			result = append(result, sickNote)
		}
	}
	return result, nil
}

func (f *fakeRepository) GetAllDepartments() ([]*domain.Department, error) {
	return f.departments, nil
}

func (f *fakeRepository) GetDepartmentsOfDepartmentHead(personID int64) ([]*domain.Department, error) {
	result := make([]*domain.Department, 0)
	for _, department := range f.departments {
		if department.IsDepartmentHead(personID) {
			result = append(result, department)
		}
	}
	return result, nil
}

func (f *fakeRepository) GetDepartmentsOfSecondStageAuthority(personID int64) ([]*domain.Department, error) {
	result := make([]*domain.Department, 0)
	for _, department := range f.departments {
		if department.IsSecondStageAuthority(personID) {
			result = append(result, department)
		}
	}
	return result, nil
}

func (f *fakeRepository) GetBasedataByPersonIDs(personIDs []int64) (map[int64]*domain.PersonBasedata, error) {
	result := make(map[int64]*domain.PersonBasedata)
	for _, id := range personIDs {
		if b, ok := f.basedata[id]; ok {
			result[id] = b
		}
	}
	return result, nil
}

func (f *fakeRepository) GetActivePersons() ([]*domain.Person, error) {
	result := make([]*domain.Person, 0)
	for _, person := range f.persons {
		if person.IsActive() {
			result = append(result, person)
		}
	}
	return result, nil
}

func (f *fakeRepository) GetPersonsByIDs(ids []int64) ([]*domain.Person, error) {
	result := make([]*domain.Person, 0)
	for _, person := range f.persons {
		if slices.Contains(ids, person.ID) {
			result = append(result, person)
		}
	}
	return result, nil
}

func date(day string) time.Time {
	t, err := time.Parse(domain.ISODateLayout, day)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(day string) *time.Time {
	t := date(day)
	return &t
}

func sickNote(person *domain.Person, start, end string) *domain.SickNote {
	return &domain.SickNote{
		Person:    person,
		Category:  domain.SickNoteCategorySickNote,
		StartDate: date(start),
		EndDate:   date(end),
		DayLength: domain.DayLengthFull,
		Status:    domain.SickNoteStatusActive,
	}
}
