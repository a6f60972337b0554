package handler

import (
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/specialleave"
)

func (h *Handler) GetSpecialLeaveSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.specialLeave.GetAll()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取特殊假设置成功", settings)
}

func (h *Handler) UpdateSpecialLeaveSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Settings []struct {
			ID     int64 `json:"id" validate:"required"`
			Active bool  `json:"active"`
			Days   int32 `json:"days" validate:"min=0"`
		} `json:"settings" validate:"required,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	updates := make([]*domain.SpecialLeaveSettings, 0, len(req.Settings))
	for _, s := range req.Settings {
		updates = append(updates, &domain.SpecialLeaveSettings{ID: s.ID, Active: s.Active, Days: s.Days})
	}

	settings, err := h.specialLeave.Update(updates)
	if err != nil {
		switch {
		case errors.Is(err, specialleave.ErrNegativeDays), errors.Is(err, specialleave.ErrUnknownSettings):
			h.badRequest(w, r, err)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新特殊假设置成功", settings)
}
