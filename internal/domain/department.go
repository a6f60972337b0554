package domain

import (
	"slices"
	"time"
)

type Department struct {
	ID                      int64     `json:"id"`
	Name                    string    `json:"name"`
	Description             string    `json:"description"`
	TwoStageApproval        bool      `json:"twoStageApproval"`
	MemberIDs               []int64   `json:"memberIds"`
	DepartmentHeadIDs       []int64   `json:"departmentHeadIds"`
	SecondStageAuthorityIDs []int64   `json:"secondStageAuthorityIds"`
	CreatedAt               time.Time `json:"createdAt"`
	Version                 int32     `json:"-"`
}

func (d *Department) HasMember(personID int64) bool {
	return slices.Contains(d.MemberIDs, personID)
}

func (d *Department) IsDepartmentHead(personID int64) bool {
	return slices.Contains(d.DepartmentHeadIDs, personID)
}

func (d *Department) IsSecondStageAuthority(personID int64) bool {
	return slices.Contains(d.SecondStageAuthorityIDs, personID)
}
