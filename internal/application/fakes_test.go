package application

import (
	"context"
	"database/sql"
	"slices"
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

type fakeRepository struct {
	persons       map[int64]*domain.Person
	departments   []*domain.Department
	vacationTypes map[int64]*domain.VacationType
	applications  map[int64]*domain.Application
	nextID        int64
	updates       int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		persons:       make(map[int64]*domain.Person),
		vacationTypes: make(map[int64]*domain.VacationType),
		applications:  make(map[int64]*domain.Application),
	}
}

func (f *fakeRepository) addPerson(id int64, firstName string, roles ...domain.Role) *domain.Person {
	person := &domain.Person{
		ID:          id,
		Username:    firstName,
		FirstName:   firstName,
		LastName:    "Test",
		Email:       firstName + "@example.org",
		Permissions: append([]domain.Role{domain.RoleUser}, roles...),
	}
	f.persons[id] = person
	return person
}

func (f *fakeRepository) CreateApplication(application *domain.Application) error {
	f.nextID++
	application.ID = f.nextID
	application.Version = 1
	f.applications[application.ID] = application
	return nil
}

func (f *fakeRepository) UpdateApplication(application *domain.Application) error {
	if _, ok := f.applications[application.ID]; !ok {
		return sql.ErrNoRows
	}
	f.updates++
	application.Version++
	f.applications[application.ID] = application
	return nil
}

func (f *fakeRepository) GetDepartmentsOfMember(personID int64) ([]*domain.Department, error) {
	result := make([]*domain.Department, 0)
	for _, department := range f.departments {
		if department.HasMember(personID) {
			result = append(result, department)
		}
	}
	return result, nil
}

func (f *fakeRepository) GetActivePersonsByRole(role domain.Role) ([]*domain.Person, error) {
	result := make([]*domain.Person, 0)
	for _, person := range f.sortedPersons() {
		if person.HasRole(role) && person.IsActive() {
			result = append(result, person)
		}
	}
	return result, nil
}

func (f *fakeRepository) GetPersonsByIDs(ids []int64) ([]*domain.Person, error) {
	result := make([]*domain.Person, 0)
	for _, person := range f.sortedPersons() {
		if slices.Contains(ids, person.ID) {
			result = append(result, person)
		}
	}
	return result, nil
}

func (f *fakeRepository) GetVacationTypeByID(id int64) (*domain.VacationType, error) {
	vacationType, ok := f.vacationTypes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return vacationType, nil
}

func (f *fakeRepository) GetApplicationsByStatuses(statuses []domain.ApplicationStatus) ([]*domain.Application, error) {
	result := make([]*domain.Application, 0)
	for _, application := range f.sortedApplications() {
		if slices.Contains(statuses, application.Status) {
			result = append(result, application)
		}
	}
	return result, nil
}

func (f *fakeRepository) GetApplicationsByStatusesAndStartDate(statuses []domain.ApplicationStatus, startDate time.Time) ([]*domain.Application, error) {
	result := make([]*domain.Application, 0)
	for _, application := range f.sortedApplications() {
		if slices.Contains(statuses, application.Status) && application.StartDate.Equal(domain.Date(startDate)) {
			result = append(result, application)
		}
	}
	return result, nil
}

func (f *fakeRepository) sortedPersons() []*domain.Person {
	result := make([]*domain.Person, 0, len(f.persons))
	for _, person := range f.persons {
		result = append(result, person)
	}
	slices.SortFunc(result, func(a, b *domain.Person) int { return int(a.ID - b.ID) })
	return result
}

func (f *fakeRepository) sortedApplications() []*domain.Application {
	result := make([]*domain.Application, 0, len(f.applications))
	for _, application := range f.applications {
		result = append(result, application)
	}
	slices.SortFunc(result, func(a, b *domain.Application) int { return int(a.ID - b.ID) })
	return result
}

type fakeMailer struct {
	mu       sync.Mutex
	messages []domain.MailMessage
}

func (f *fakeMailer) Publish(_ context.Context, msg domain.MailMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

// recipients 返回某种类型邮件的收件人，按发送顺序
func (f *fakeMailer) recipients(mailType string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]string, 0)
	for _, msg := range f.messages {
		if msg.Type == mailType {
			result = append(result, msg.To)
		}
	}
	return result
}

func fixedClock(day string) func() time.Time {
	t, err := time.Parse(domain.ISODateLayout, day)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t.Add(9 * time.Hour) }
}

func date(day string) time.Time {
	t, err := time.Parse(domain.ISODateLayout, day)
	if err != nil {
		panic(err)
	}
	return t
}
