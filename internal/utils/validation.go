package utils

import (
	"errors"
	"fmt"
	"slices"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

// ParsePermissions 检查权限是否合法并去重，USER 权限总是会被加上
func ParsePermissions(raw []string) ([]domain.Role, error) {
	permissions := []domain.Role{domain.RoleUser}
	for _, r := range raw {
		role := domain.Role(r)
		if !slices.Contains(domain.AllRoles, role) {
			return nil, fmt.Errorf("权限 %s 不存在", r)
		}
		if !slices.Contains(permissions, role) {
			permissions = append(permissions, role)
		}
	}

	// 已离职的人员不能再拥有其他权限
	if slices.Contains(permissions, domain.RoleInactive) && len(permissions) > 2 {
		return nil, errors.New("已离职的人员不能拥有其他权限")
	}

	return permissions, nil
}

func ValidateDepartment(department *domain.Department) error {
	if !department.TwoStageApproval && len(department.SecondStageAuthorityIDs) > 0 {
		return errors.New("只有开启两级审批的部门才能设置二级审批人")
	}

	for _, id := range department.SecondStageAuthorityIDs {
		if slices.Contains(department.DepartmentHeadIDs, id) {
			return fmt.Errorf("id 为 %d 的人员不能同时是部门负责人和二级审批人", id)
		}
	}

	return nil
}

func ValidateSickNote(sickNote *domain.SickNote) error {
	if sickNote.EndDate.Before(sickNote.StartDate) {
		return errors.New("结束日期不能早于开始日期")
	}

	if sickNote.DayLength.IsHalfDay() && !sickNote.StartDate.Equal(sickNote.EndDate) {
		return errors.New("半天病假的开始日期和结束日期必须相同")
	}

	if (sickNote.AubStartDate == nil) != (sickNote.AubEndDate == nil) {
		return errors.New("病假证明的开始日期和结束日期必须同时填写")
	}

	if sickNote.IsAubPresent() {
		if sickNote.AubEndDate.Before(*sickNote.AubStartDate) {
			return errors.New("病假证明的结束日期不能早于开始日期")
		}
		if sickNote.AubStartDate.Before(sickNote.StartDate) || sickNote.AubEndDate.After(sickNote.EndDate) {
			return errors.New("病假证明的时间必须在病假时间之内")
		}
	}

	return nil
}
