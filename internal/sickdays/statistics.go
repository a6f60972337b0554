package sickdays

import (
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

type Repository interface {
	GetSickNotesByStatusesAndPeriod(statuses []domain.SickNoteStatus, from, to time.Time) ([]*domain.SickNote, error)
	GetSickNotesByStatusesPersonsAndPeriod(statuses []domain.SickNoteStatus, personIDs []int64, from, to time.Time) ([]*domain.SickNote, error)
	GetAllDepartments() ([]*domain.Department, error)
	GetDepartmentsOfDepartmentHead(personID int64) ([]*domain.Department, error)
	GetDepartmentsOfSecondStageAuthority(personID int64) ([]*domain.Department, error)
	GetBasedataByPersonIDs(personIDs []int64) (map[int64]*domain.PersonBasedata, error)
	GetActivePersons() ([]*domain.Person, error)
	GetPersonsByIDs(ids []int64) ([]*domain.Person, error)
}

type StatisticsService struct {
	repository Repository
}

func NewStatisticsService(repo Repository) *StatisticsService {
	return &StatisticsService{
		repository: repo,
	}
}

// GetAll 按查看者的权限返回病假统计：
// 办公室，或同时拥有 SICK_NOTE_VIEW 的老板可以看到所有人；
// 拥有 SICK_NOTE_VIEW 的部门负责人和二级审批人只能看到自己部门的成员；其他人看不到任何统计
func (s *StatisticsService) GetAll(person *domain.Person, from, to time.Time) ([]*DetailedStatistics, error) {
	sickNotes, err := s.visibleSickNotes(person, from, to)
	if err != nil {
		return nil, err
	}
	if len(sickNotes) == 0 {
		return make([]*DetailedStatistics, 0), nil
	}

	// 按人员聚合，保持病假条的先后顺序
	statistics := make([]*DetailedStatistics, 0)
	byPerson := make(map[int64]*DetailedStatistics)
	for _, sickNote := range sickNotes {
		statistic, ok := byPerson[sickNote.Person.ID]
		if !ok {
			statistic = &DetailedStatistics{
				Person:      sickNote.Person,
				Departments: make([]string, 0),
				SickNotes:   make([]*domain.SickNote, 0),
			}
			byPerson[sickNote.Person.ID] = statistic
			statistics = append(statistics, statistic)
		}
		statistic.SickNotes = append(statistic.SickNotes, sickNote)
	}

	personIDs := make([]int64, 0, len(statistics))
	for _, statistic := range statistics {
		personIDs = append(personIDs, statistic.Person.ID)
	}

	basedata, err := s.repository.GetBasedataByPersonIDs(personIDs)
	if err != nil {
		return nil, err
	}
	departmentNames, err := s.departmentNamesByMembers(personIDs)
	if err != nil {
		return nil, err
	}

	for _, statistic := range statistics {
		if b, ok := basedata[statistic.Person.ID]; ok {
			statistic.PersonnelNumber = b.PersonnelNumber
		}
		if names, ok := departmentNames[statistic.Person.ID]; ok {
			statistic.Departments = names
		}
	}

	return statistics, nil
}

func (s *StatisticsService) visibleSickNotes(person *domain.Person, from, to time.Time) ([]*domain.SickNote, error) {
	active := []domain.SickNoteStatus{domain.SickNoteStatusActive}

	if person.HasRole(domain.RoleOffice) || (person.HasRole(domain.RoleBoss) && person.HasRole(domain.RoleSickNoteView)) {
		return s.repository.GetSickNotesByStatusesAndPeriod(active, from, to)
	}

	if person.HasRole(domain.RoleSickNoteView) && person.HasAnyRole(domain.RoleDepartmentHead, domain.RoleSecondStageAuthority) {
		memberIDs, err := s.managedMemberIDs(person)
		if err != nil {
			return nil, err
		}
		return s.repository.GetSickNotesByStatusesPersonsAndPeriod(active, memberIDs, from, to)
	}

	return make([]*domain.SickNote, 0), nil
}

// managedMemberIDs 返回 person 作为部门负责人或二级审批人所管理的所有成员 ID（已去重）
func (s *StatisticsService) managedMemberIDs(person *domain.Person) ([]int64, error) {
	departments := make([]*domain.Department, 0)

	if person.HasRole(domain.RoleDepartmentHead) {
		ds, err := s.repository.GetDepartmentsOfDepartmentHead(person.ID)
		if err != nil {
			return nil, err
		}
		departments = append(departments, ds...)
	}

	if person.HasRole(domain.RoleSecondStageAuthority) {
		ds, err := s.repository.GetDepartmentsOfSecondStageAuthority(person.ID)
		if err != nil {
			return nil, err
		}
		departments = append(departments, ds...)
	}

	ids := make([]int64, 0)
	for _, department := range departments {
		ids = append(ids, department.MemberIDs...)
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

func (s *StatisticsService) departmentNamesByMembers(personIDs []int64) (map[int64][]string, error) {
	departments, err := s.repository.GetAllDepartments()
	if err != nil {
		return nil, err
	}

	result := make(map[int64][]string)
	for _, personID := range personIDs {
		for _, department := range departments {
			if department.HasMember(personID) {
				result[personID] = append(result[personID], department.Name)
			}
		}
	}
	return result, nil
}
