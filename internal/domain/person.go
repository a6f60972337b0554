package domain

import (
	"crypto/md5"
	"encoding/hex"
	"slices"
	"strings"
	"time"
)

type Role string

const (
	RoleUser                 Role = "USER"
	RoleInactive             Role = "INACTIVE"
	RoleDepartmentHead       Role = "DEPARTMENT_HEAD"
	RoleSecondStageAuthority Role = "SECOND_STAGE_AUTHORITY"
	RoleBoss                 Role = "BOSS"
	RoleOffice               Role = "OFFICE"
	RoleSickNoteView         Role = "SICK_NOTE_VIEW"
	RoleSickNoteAdd          Role = "SICK_NOTE_ADD"
	RoleSickNoteEdit         Role = "SICK_NOTE_EDIT"
	RoleSickNoteCancel       Role = "SICK_NOTE_CANCEL"
)

var AllRoles = []Role{
	RoleUser,
	RoleInactive,
	RoleDepartmentHead,
	RoleSecondStageAuthority,
	RoleBoss,
	RoleOffice,
	RoleSickNoteView,
	RoleSickNoteAdd,
	RoleSickNoteEdit,
	RoleSickNoteCancel,
}

type Person struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Permissions  []Role    `json:"permissions"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}

func (p *Person) HasRole(role Role) bool {
	return slices.Contains(p.Permissions, role)
}

func (p *Person) HasAnyRole(roles ...Role) bool {
	for _, role := range roles {
		if p.HasRole(role) {
			return true
		}
	}
	return false
}

// 拥有 INACTIVE 权限的人员视为已离职
func (p *Person) IsActive() bool {
	return !p.HasRole(RoleInactive)
}

func (p *Person) NiceName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p *Person) GravatarURL() string {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if email == "" {
		return ""
	}
	sum := md5.Sum([]byte(email))
	return "https://gravatar.com/avatar/" + hex.EncodeToString(sum[:])
}

type PersonBasedata struct {
	PersonID              int64  `json:"personId"`
	PersonnelNumber       string `json:"personnelNumber"`
	AdditionalInformation string `json:"additionalInformation"`
}
