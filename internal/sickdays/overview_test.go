package sickdays

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

func names(persons []*domain.Person) []string {
	result := make([]string, 0, len(persons))
	for _, person := range persons {
		result = append(result, person.FirstName+" "+person.LastName)
	}
	return result
}

func newOverviewFixture(viewerRoles ...domain.Role) (*fakeRepository, *domain.Person) {
	repo := newFakeRepository()
	viewer := repo.addPerson(1, "Viewer", "Zed", viewerRoles...)
	repo.addPerson(2, "Bernd", "Zimmer")
	repo.addPerson(3, "Anna", "Yilmaz")
	repo.addPerson(4, "Anna", "Bauer")
	repo.addPerson(5, "Carla", "Gone", domain.RoleInactive)
	repo.addPerson(6, "Dora", "Elsewhere")

	repo.departments = []*domain.Department{
		{ID: 1, Name: "Kitchen", MemberIDs: []int64{2, 3, 5}, DepartmentHeadIDs: []int64{1}},
		{ID: 2, Name: "Service", MemberIDs: []int64{3, 4}, SecondStageAuthorityIDs: []int64{1}},
		{ID: 3, Name: "Bar", MemberIDs: []int64{6}},
	}
	return repo, viewer
}

func TestVisiblePersonsForBossAndOffice(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleBoss, domain.RoleOffice} {
		t.Run(string(role), func(t *testing.T) {
			repo, viewer := newOverviewFixture(role)

			persons, err := NewOverviewService(repo).VisiblePersons(viewer)
			require.NoError(t, err)
			require.Equal(t, []string{"Anna Bauer", "Anna Yilmaz", "Bernd Zimmer", "Dora Elsewhere", "Viewer Zed"}, names(persons))
		})
	}
}

func TestVisiblePersonsForDepartmentRoles(t *testing.T) {
	repo, viewer := newOverviewFixture(domain.RoleDepartmentHead, domain.RoleSecondStageAuthority)

	persons, err := NewOverviewService(repo).VisiblePersons(viewer)
	require.NoError(t, err)

	// 去重、排除已离职人员并按名、姓排序
	require.Equal(t, []string{"Anna Bauer", "Anna Yilmaz", "Bernd Zimmer"}, names(persons))
}

func TestVisiblePersonsForDepartmentHeadOnly(t *testing.T) {
	repo, viewer := newOverviewFixture(domain.RoleDepartmentHead)

	persons, err := NewOverviewService(repo).VisiblePersons(viewer)
	require.NoError(t, err)
	require.Equal(t, []string{"Anna Yilmaz", "Bernd Zimmer"}, names(persons))
}

func TestVisiblePersonsForPlainUser(t *testing.T) {
	repo, viewer := newOverviewFixture()

	persons, err := NewOverviewService(repo).VisiblePersons(viewer)
	require.NoError(t, err)
	require.Empty(t, persons)
}

func TestOverview(t *testing.T) {
	repo, viewer := newOverviewFixture(domain.RoleDepartmentHead, domain.RoleSickNoteView)
	bernd := repo.persons[1]
	anna := repo.persons[2]
	dora := repo.persons[5]

	repo.basedata[2] = &domain.PersonBasedata{PersonID: 2, PersonnelNumber: "0815"}

	// 2026-03-02 是周一
	berndSick := sickNote(bernd, "2026-03-02", "2026-03-04")
	berndSick.AubStartDate = datePtr("2026-03-03")
	berndSick.AubEndDate = datePtr("2026-03-04")
	childSick := sickNote(bernd, "2026-03-09", "2026-03-09")
	childSick.Category = domain.SickNoteCategorySickNoteChild
	// 不在可见范围的人员不会出现
	repo.sickNotes = []*domain.SickNote{berndSick, childSick, sickNote(dora, "2026-03-02", "2026-03-02")}

	period := domain.NewFilterPeriod(nil, nil, date("2026-06-15"))
	overview, err := NewOverviewService(repo).Overview(viewer, period)
	require.NoError(t, err)

	require.True(t, overview.ShowPersonnelNumberColumn)
	require.Equal(t, period, overview.Period)
	require.Len(t, overview.Rows, 2)

	annaRow := overview.Rows[0]
	require.Equal(t, anna.ID, annaRow.PersonID)
	require.Equal(t, "", annaRow.PersonnelNumber)
	requireDecimal(t, "0", annaRow.AmountSickDays)
	requireDecimal(t, "0", annaRow.AmountChildSickDays)

	berndRow := overview.Rows[1]
	require.Equal(t, bernd.ID, berndRow.PersonID)
	require.Equal(t, "0815", berndRow.PersonnelNumber)
	require.Equal(t, "Bernd Zimmer", berndRow.NiceName)
	requireDecimal(t, "3", berndRow.AmountSickDays)
	requireDecimal(t, "2", berndRow.AmountSickDaysWithAub)
	requireDecimal(t, "1", berndRow.AmountChildSickDays)
	requireDecimal(t, "0", berndRow.AmountChildSickDaysWithAub)
}

func TestOverviewWithoutPersonnelNumbers(t *testing.T) {
	repo, viewer := newOverviewFixture(domain.RoleOffice)
	repo.basedata[2] = &domain.PersonBasedata{PersonID: 2, PersonnelNumber: ""}

	overview, err := NewOverviewService(repo).Overview(viewer, domain.NewFilterPeriod(nil, nil, date("2026-06-15")))
	require.NoError(t, err)
	require.False(t, overview.ShowPersonnelNumberColumn)
	require.Len(t, overview.Rows, 5)
}
