package sickdays

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

type OverviewRow struct {
	PersonID                   int64           `json:"personId"`
	PersonnelNumber            string          `json:"personnelNumber"`
	FirstName                  string          `json:"firstName"`
	LastName                   string          `json:"lastName"`
	NiceName                   string          `json:"niceName"`
	AvatarURL                  string          `json:"avatarUrl"`
	AmountSickDays             decimal.Decimal `json:"amountSickDays"`
	AmountSickDaysWithAub      decimal.Decimal `json:"amountSickDaysWithAub"`
	AmountChildSickDays        decimal.Decimal `json:"amountChildSickDays"`
	AmountChildSickDaysWithAub decimal.Decimal `json:"amountChildSickDaysWithAub"`
}

type Overview struct {
	Rows                      []OverviewRow       `json:"rows"`
	ShowPersonnelNumberColumn bool                `json:"showPersonnelNumberColumn"`
	Period                    domain.FilterPeriod `json:"period"`
	Today                     time.Time           `json:"today"`
}

type OverviewService struct {
	repository Repository
	statistics *StatisticsService
	now        func() time.Time
}

func NewOverviewService(repo Repository) *OverviewService {
	return &OverviewService{
		repository: repo,
		statistics: NewStatisticsService(repo),
		now:        time.Now,
	}
}

func (s *OverviewService) Overview(person *domain.Person, period domain.FilterPeriod) (*Overview, error) {
	persons, err := s.VisiblePersons(person)
	if err != nil {
		return nil, err
	}

	statistics, err := s.statistics.GetAll(person, period.StartDate, period.EndDate)
	if err != nil {
		return nil, err
	}
	sickDaysByPerson := make(map[int64]SickDays)
	childSickDaysByPerson := make(map[int64]SickDays)
	for _, statistic := range statistics {
		sickDaysByPerson[statistic.Person.ID] = statistic.GetSickDays(period.StartDate, period.EndDate)
		childSickDaysByPerson[statistic.Person.ID] = statistic.GetChildSickDays(period.StartDate, period.EndDate)
	}

	personnelNumbers, err := s.personnelNumbers(persons)
	if err != nil {
		return nil, err
	}

	rows := make([]OverviewRow, 0, len(persons))
	for _, p := range persons {
		sickDays, ok := sickDaysByPerson[p.ID]
		if !ok {
			sickDays = NewSickDays()
		}
		childSickDays, ok := childSickDaysByPerson[p.ID]
		if !ok {
			childSickDays = NewSickDays()
		}

		rows = append(rows, OverviewRow{
			PersonID:                   p.ID,
			PersonnelNumber:            personnelNumbers[p.ID],
			FirstName:                  p.FirstName,
			LastName:                   p.LastName,
			NiceName:                   p.NiceName(),
			AvatarURL:                  p.GravatarURL(),
			AmountSickDays:             sickDays.Total(),
			AmountSickDaysWithAub:      sickDays.WithAub(),
			AmountChildSickDays:        childSickDays.Total(),
			AmountChildSickDaysWithAub: childSickDays.WithAub(),
		})
	}

	return &Overview{
		Rows:                      rows,
		ShowPersonnelNumberColumn: len(personnelNumbers) > 0,
		Period:                    period,
		Today:                     domain.Date(s.now()),
	}, nil
}

// VisiblePersons 老板和办公室可以看到所有在职人员；
// 其他人看到自己作为二级审批人和部门负责人所管理的在职成员，去重并按名、姓排序
func (s *OverviewService) VisiblePersons(person *domain.Person) ([]*domain.Person, error) {
	if person.HasAnyRole(domain.RoleBoss, domain.RoleOffice) {
		persons, err := s.repository.GetActivePersons()
		if err != nil {
			return nil, err
		}
		sortByName(persons)
		return persons, nil
	}

	ids := make([]int64, 0)
	if person.HasRole(domain.RoleSecondStageAuthority) {
		departments, err := s.repository.GetDepartmentsOfSecondStageAuthority(person.ID)
		if err != nil {
			return nil, err
		}
		for _, department := range departments {
			ids = append(ids, department.MemberIDs...)
		}
	}
	if person.HasRole(domain.RoleDepartmentHead) {
		departments, err := s.repository.GetDepartmentsOfDepartmentHead(person.ID)
		if err != nil {
			return nil, err
		}
		for _, department := range departments {
			ids = append(ids, department.MemberIDs...)
		}
	}
	if len(ids) == 0 {
		return make([]*domain.Person, 0), nil
	}

	members, err := s.repository.GetPersonsByIDs(ids)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	persons := make([]*domain.Person, 0, len(members))
	for _, member := range members {
		if !member.IsActive() || seen[member.ID] {
			continue
		}
		seen[member.ID] = true
		persons = append(persons, member)
	}

	sortByName(persons)

	return persons, nil
}

// 按名、姓排序
func sortByName(persons []*domain.Person) {
	slices.SortStableFunc(persons, func(a, b *domain.Person) int {
		return cmp.Or(cmp.Compare(a.FirstName, b.FirstName), cmp.Compare(a.LastName, b.LastName))
	})
}

// 只返回有工号的人员
func (s *OverviewService) personnelNumbers(persons []*domain.Person) (map[int64]string, error) {
	ids := make([]int64, 0, len(persons))
	for _, p := range persons {
		ids = append(ids, p.ID)
	}

	basedata, err := s.repository.GetBasedataByPersonIDs(ids)
	if err != nil {
		return nil, err
	}

	result := make(map[int64]string)
	for id, b := range basedata {
		if b.PersonnelNumber != "" {
			result[id] = b.PersonnelNumber
		}
	}
	return result, nil
}
