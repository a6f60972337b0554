package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

func (h *Handler) GetAllVacationTypes(w http.ResponseWriter, r *http.Request) {
	vacationTypes, err := h.repository.GetAllVacationTypes()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取假期类型成功", vacationTypes)
}

func (h *Handler) CreateVacationType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category   string `json:"category" validate:"required,oneof=HOLIDAY SPECIALLEAVE UNPAIDLEAVE OVERTIME"`
		MessageKey string `json:"messageKey" validate:"required,max=100"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	vacationType := &domain.VacationType{
		Category:   domain.VacationCategory(req.Category),
		MessageKey: req.MessageKey,
		Active:     true,
	}

	if err := h.repository.CreateVacationType(vacationType); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "vacation_types_message_key_key":
			h.badRequest(w, r, errors.New("假期类型已存在"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "假期类型创建成功", vacationType)
}

// UpdateVacationType 只允许启用或停用假期类型
func (h *Handler) UpdateVacationType(w http.ResponseWriter, r *http.Request) {
	id, err := h.idParam(r)
	if err != nil {
		h.errorResponse(w, r, "假期类型ID无效")
		return
	}

	var req struct {
		Active *bool `json:"active" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	vacationType, err := h.repository.GetVacationTypeByID(id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "假期类型不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	vacationType.Active = *req.Active
	if err := h.repository.UpdateVacationType(vacationType); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新假期类型成功", vacationType)
}
