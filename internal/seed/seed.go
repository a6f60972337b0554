package seed

import (
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/utils"
)

var VacationTypes = []*domain.VacationType{
	{Category: domain.VacationCategoryHoliday, MessageKey: "application.data.vacation.holiday", Active: true},
	{Category: domain.VacationCategorySpecialLeave, MessageKey: "application.data.vacation.specialleave", Active: true},
	{Category: domain.VacationCategoryUnpaidLeave, MessageKey: "application.data.vacation.unpaidleave", Active: true},
	{Category: domain.VacationCategoryOvertime, MessageKey: "application.data.vacation.overtime", Active: true},
}

var SpecialLeaveSettings = []*domain.SpecialLeaveSettings{
	{MessageKey: "application.data.specialleave.own_wedding", Active: true, Days: 1},
	{MessageKey: "application.data.specialleave.birth_of_child", Active: true, Days: 1},
	{MessageKey: "application.data.specialleave.death_of_relative", Active: true, Days: 2},
	{MessageKey: "application.data.specialleave.relocation_for_business_reason", Active: true, Days: 1},
	{MessageKey: "application.data.specialleave.birth_of_grandchild", Active: false, Days: 1},
}

var DepartmentNames = []string{"运维部", "开发部", "行政部"}

// 已经存在的记录（违反唯一约束）直接跳过
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// SeedDemoData 插入假期类型、特殊假配置和若干部门及其成员、申请和病假，重复执行是安全的
func SeedDemoData(r *repository.Repository, password string, emailDomain string, membersPerDepartment int) error {
	for _, vacationType := range VacationTypes {
		if err := r.CreateVacationType(vacationType); err != nil && !isUniqueViolation(err) {
			return err
		}
	}
	for _, settings := range SpecialLeaveSettings {
		if err := r.CreateSpecialLeaveSettings(settings); err != nil && !isUniqueViolation(err) {
			return err
		}
	}

	vacationTypes, err := r.GetAllVacationTypes()
	if err != nil {
		return err
	}

	today := domain.Date(time.Now())
	for i, name := range DepartmentNames {
		members := make([]*domain.Person, 0, membersPerDepartment)
		for len(members) < membersPerDepartment {
			person, err := utils.GenerateRandomPerson(password, emailDomain)
			if err != nil {
				return err
			}
			// 第一个成员是部门负责人，其余的都是普通用户
			person.Permissions = []domain.Role{domain.RoleUser}
			if len(members) == 0 {
				person.Permissions = append(person.Permissions, domain.RoleDepartmentHead, domain.RoleSickNoteView)
			}
			if err := r.CreatePerson(person); err != nil {
				if isUniqueViolation(err) {
					// 随机生成的用户名重复了，重新生成
					continue
				}
				return err
			}
			members = append(members, person)
		}

		department := &domain.Department{
			Name:                    name,
			Description:             "演示数据",
			TwoStageApproval:        i == 0,
			MemberIDs:               make([]int64, 0, len(members)),
			DepartmentHeadIDs:       []int64{members[0].ID},
			SecondStageAuthorityIDs: make([]int64, 0),
		}
		for _, member := range members {
			department.MemberIDs = append(department.MemberIDs, member.ID)
		}
		if err := utils.ValidateDepartment(department); err != nil {
			return err
		}
		if err := r.CreateDepartment(department); err != nil {
			if isUniqueViolation(err) {
				slog.Warn("部门已存在，跳过", "name", name)
				continue
			}
			return err
		}

		for _, member := range members[1:] {
			vacationType := vacationTypes[rand.Intn(len(vacationTypes))]
			if err := r.CreateApplication(utils.GenerateRandomApplication(member, vacationType, today)); err != nil {
				return err
			}
			if rand.Intn(2) == 0 {
				sickNote := utils.GenerateRandomSickNote(member, today)
				sickNote.Applier = members[0]
				if err := r.CreateSickNote(sickNote); err != nil {
					return err
				}
			}
		}

		slog.Info("已插入演示部门", "name", name, "members", len(members))
	}

	return nil
}
