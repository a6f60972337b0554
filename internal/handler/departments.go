package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/utils"
)

var errPersonNotFound = errors.New("部门中存在不存在的人员")

func (h *Handler) GetAllDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.repository.GetAllDepartments()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取部门列表成功", departments)
}

func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	department := r.Context().Value(DepartmentCtx).(*domain.Department)
	h.successResponse(w, r, "获取部门信息成功", department)
}

// checkPersonsExist 确保部门中引用的人员都存在
func (h *Handler) checkPersonsExist(department *domain.Department) error {
	ids := make([]int64, 0, len(department.MemberIDs)+len(department.DepartmentHeadIDs)+len(department.SecondStageAuthorityIDs))
	ids = append(ids, department.MemberIDs...)
	ids = append(ids, department.DepartmentHeadIDs...)
	ids = append(ids, department.SecondStageAuthorityIDs...)

	persons, err := h.repository.GetPersonsByIDs(ids)
	if err != nil {
		return err
	}

	found := make(map[int64]bool, len(persons))
	for _, person := range persons {
		found[person.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return errPersonNotFound
		}
	}
	return nil
}

func (h *Handler) departmentConstraintError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.ConstraintName == "departments_name_key":
		h.badRequest(w, r, errors.New("部门名称已存在"))
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "更新部门信息失败，请重试")
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) saveDepartment(w http.ResponseWriter, r *http.Request, department *domain.Department, save func(*domain.Department) error) bool {
	if err := utils.ValidateDepartment(department); err != nil {
		h.badRequest(w, r, err)
		return false
	}

	if err := h.checkPersonsExist(department); err != nil {
		switch {
		case errors.Is(err, errPersonNotFound):
			h.badRequest(w, r, err)
		default:
			h.internalServerError(w, r, err)
		}
		return false
	}

	if err := save(department); err != nil {
		h.departmentConstraintError(w, r, err)
		return false
	}

	return true
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                    string  `json:"name" validate:"required,max=50"`
		Description             string  `json:"description" validate:"max=200"`
		TwoStageApproval        bool    `json:"twoStageApproval"`
		MemberIDs               []int64 `json:"memberIds"`
		DepartmentHeadIDs       []int64 `json:"departmentHeadIds"`
		SecondStageAuthorityIDs []int64 `json:"secondStageAuthorityIds"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	department := &domain.Department{
		Name:                    req.Name,
		Description:             req.Description,
		TwoStageApproval:        req.TwoStageApproval,
		MemberIDs:               nonNilIDs(req.MemberIDs),
		DepartmentHeadIDs:       nonNilIDs(req.DepartmentHeadIDs),
		SecondStageAuthorityIDs: nonNilIDs(req.SecondStageAuthorityIDs),
	}

	if !h.saveDepartment(w, r, department, h.repository.CreateDepartment) {
		return
	}

	h.successResponse(w, r, "部门创建成功", department)
}

func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                    *string `json:"name" validate:"omitempty,max=50"`
		Description             *string `json:"description" validate:"omitempty,max=200"`
		TwoStageApproval        *bool   `json:"twoStageApproval"`
		MemberIDs               []int64 `json:"memberIds"`
		DepartmentHeadIDs       []int64 `json:"departmentHeadIds"`
		SecondStageAuthorityIDs []int64 `json:"secondStageAuthorityIds"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	department := r.Context().Value(DepartmentCtx).(*domain.Department)

	if req.Name != nil {
		department.Name = *req.Name
	}
	if req.Description != nil {
		department.Description = *req.Description
	}
	if req.TwoStageApproval != nil {
		department.TwoStageApproval = *req.TwoStageApproval
	}
	if req.MemberIDs != nil {
		department.MemberIDs = req.MemberIDs
	}
	if req.DepartmentHeadIDs != nil {
		department.DepartmentHeadIDs = req.DepartmentHeadIDs
	}
	if req.SecondStageAuthorityIDs != nil {
		department.SecondStageAuthorityIDs = req.SecondStageAuthorityIDs
	}

	if !h.saveDepartment(w, r, department, h.repository.UpdateDepartment) {
		return
	}

	h.successResponse(w, r, "更新部门信息成功", department)
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	department := r.Context().Value(DepartmentCtx).(*domain.Department)

	if err := h.repository.DeleteDepartment(department.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除部门成功", nil)
}

func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return make([]int64, 0)
	}
	return ids
}
