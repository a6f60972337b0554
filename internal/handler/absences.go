package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/absence"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

// GetAbsences 返回 since 之后所有未结束的缺勤，persons 为逗号分隔的人员 ID，缺省为所有人
func (h *Handler) GetAbsences(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	since := h.today()
	if value := query.Get("since"); value != "" {
		t, ok := domain.ParseDate(value)
		if !ok {
			h.errorResponse(w, r, "since 不是合法的日期")
			return
		}
		since = t
	}

	raw := strings.TrimSpace(query.Get("persons"))
	if raw == "" {
		absences, err := h.absences.GetOpenAbsencesSinceForAll(since)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		h.successResponse(w, r, "获取缺勤列表成功", absences)
		return
	}

	ids := make([]int64, 0)
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			h.errorResponse(w, r, "persons 参数不合法")
			return
		}
		ids = append(ids, id)
	}

	persons, err := h.repository.GetPersonsByIDs(ids)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if len(persons) == 0 {
		h.successResponse(w, r, "获取缺勤列表成功", make([]*absence.Absence, 0))
		return
	}

	absences, err := h.absences.GetOpenAbsencesSince(persons, since)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取缺勤列表成功", absences)
}
