package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPersonRoles(t *testing.T) {
	person := &Person{Permissions: []Role{RoleUser, RoleDepartmentHead}}

	assert.True(t, person.HasRole(RoleDepartmentHead))
	assert.False(t, person.HasRole(RoleBoss))
	assert.True(t, person.HasAnyRole(RoleBoss, RoleDepartmentHead))
	assert.False(t, person.HasAnyRole(RoleBoss, RoleOffice))
	assert.False(t, person.HasAnyRole())
	assert.True(t, person.IsActive())

	person.Permissions = append(person.Permissions, RoleInactive)
	assert.False(t, person.IsActive())
}

func TestPersonNames(t *testing.T) {
	assert.Equal(t, "三 张", (&Person{FirstName: "三", LastName: "张"}).NiceName())
	assert.Equal(t, "管理员", (&Person{FirstName: "管理员"}).NiceName())

	person := &Person{Email: " MyEmailAddress@example.com "}
	assert.Equal(t, "https://gravatar.com/avatar/0bc83cb571cd1c50ba6f3e8a78ef1346", person.GravatarURL())
	assert.Empty(t, (&Person{}).GravatarURL())
}

func TestDepartmentMembership(t *testing.T) {
	department := &Department{
		MemberIDs:               []int64{1, 2, 3},
		DepartmentHeadIDs:       []int64{1},
		SecondStageAuthorityIDs: []int64{9},
	}

	assert.True(t, department.HasMember(2))
	assert.False(t, department.HasMember(9))
	assert.True(t, department.IsDepartmentHead(1))
	assert.False(t, department.IsDepartmentHead(2))
	assert.True(t, department.IsSecondStageAuthority(9))
}

func TestSickNoteAub(t *testing.T) {
	start := date(2020, 1, 1)
	sickNote := &SickNote{Status: SickNoteStatusActive, AubStartDate: &start}
	assert.False(t, sickNote.IsAubPresent())
	assert.True(t, sickNote.IsActive())

	sickNote.AubEndDate = &start
	assert.True(t, sickNote.IsAubPresent())

	sickNote.Status = SickNoteStatusCancelled
	assert.False(t, sickNote.IsActive())
}
