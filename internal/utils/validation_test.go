package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestParsePermissions(t *testing.T) {
	permissions, err := ParsePermissions([]string{"OFFICE", "OFFICE", "SICK_NOTE_VIEW"})
	require.NoError(t, err)
	require.Equal(t, []domain.Role{domain.RoleUser, domain.RoleOffice, domain.RoleSickNoteView}, permissions)

	_, err = ParsePermissions([]string{"ADMIN"})
	require.Error(t, err)

	_, err = ParsePermissions([]string{"INACTIVE", "BOSS"})
	require.Error(t, err)

	permissions, err = ParsePermissions([]string{"INACTIVE"})
	require.NoError(t, err)
	require.Equal(t, []domain.Role{domain.RoleUser, domain.RoleInactive}, permissions)
}

func TestValidateDepartment(t *testing.T) {
	require.NoError(t, ValidateDepartment(&domain.Department{DepartmentHeadIDs: []int64{1}}))
	require.NoError(t, ValidateDepartment(&domain.Department{TwoStageApproval: true, DepartmentHeadIDs: []int64{1}, SecondStageAuthorityIDs: []int64{2}}))
	require.Error(t, ValidateDepartment(&domain.Department{SecondStageAuthorityIDs: []int64{2}}))
	require.Error(t, ValidateDepartment(&domain.Department{TwoStageApproval: true, DepartmentHeadIDs: []int64{2}, SecondStageAuthorityIDs: []int64{2}}))
}

func TestValidateSickNote(t *testing.T) {
	aubStart, aubEnd := date(2024, 3, 5), date(2024, 3, 6)
	valid := &domain.SickNote{
		StartDate:    date(2024, 3, 4),
		EndDate:      date(2024, 3, 8),
		DayLength:    domain.DayLengthFull,
		AubStartDate: &aubStart,
		AubEndDate:   &aubEnd,
	}
	require.NoError(t, ValidateSickNote(valid))

	reversed := &domain.SickNote{StartDate: date(2024, 3, 8), EndDate: date(2024, 3, 4), DayLength: domain.DayLengthFull}
	require.Error(t, ValidateSickNote(reversed))

	halfDay := &domain.SickNote{StartDate: date(2024, 3, 4), EndDate: date(2024, 3, 5), DayLength: domain.DayLengthMorning}
	require.Error(t, ValidateSickNote(halfDay))

	outside := date(2024, 3, 10)
	aubOutside := &domain.SickNote{StartDate: date(2024, 3, 4), EndDate: date(2024, 3, 8), DayLength: domain.DayLengthFull, AubStartDate: &aubStart, AubEndDate: &outside}
	require.Error(t, ValidateSickNote(aubOutside))

	onlyStart := &domain.SickNote{StartDate: date(2024, 3, 4), EndDate: date(2024, 3, 8), DayLength: domain.DayLengthFull, AubStartDate: &aubStart}
	require.Error(t, ValidateSickNote(onlyStart))
}

func TestGenerateRandomPerson(t *testing.T) {
	person, err := GenerateRandomPerson("secret", "example.org")
	require.NoError(t, err)
	require.NotEmpty(t, person.Username)
	require.Equal(t, person.Username+"@example.org", person.Email)
	require.True(t, person.HasRole(domain.RoleUser))
	require.True(t, person.IsActive())
}

func TestGenerateRandomSickNoteIsValid(t *testing.T) {
	today := date(2024, 6, 1)
	for i := 0; i < 50; i++ {
		sickNote := GenerateRandomSickNote(&domain.Person{ID: 1}, today)
		require.NoError(t, ValidateSickNote(sickNote))
	}
}
