package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/sickdays"
)

// GetSickDaysOverview 返回 from 到 to 之间的病假天数统计，缺省为今年
func (h *Handler) GetSickDaysOverview(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Person)

	attributes, err := h.popFlash(r, myInfo.ID, sickDaysPath)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	var filterPeriodIncorrect bool
	if _, err := attributes.Decode(flashFilterPeriodIncorrect, &filterPeriodIncorrect); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	period, ok := h.requestedPeriod(r)
	if !ok {
		// 查询参数不合法时退回到缺省的时间段
		period = domain.NewFilterPeriod(nil, nil, h.today())
		filterPeriodIncorrect = true
	}

	overview, err := h.overview.Overview(myInfo, period)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取病假统计成功", map[string]any{
		"overview":              overview,
		"filterPeriodIncorrect": filterPeriodIncorrect,
	})
}

// FilterSickDays 接收筛选表单，重定向到带查询参数的统计页
func (h *Handler) FilterSickDays(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Person)

	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, err)
		return
	}

	from := strings.TrimSpace(r.PostForm.Get("startDate"))
	to := strings.TrimSpace(r.PostForm.Get("endDate"))

	start, startOK := domain.ParseDate(from)
	end, endOK := domain.ParseDate(to)
	if !startOK || !endOK || start.After(end) {
		if err := h.addFlash(r, myInfo.ID, sickDaysPath, map[string]any{flashFilterPeriodIncorrect: true}); err != nil {
			h.internalServerError(w, r, err)
			return
		}
		h.redirect(w, r, sickDaysPath)
		return
	}

	query := url.Values{}
	query.Set("from", start.Format(domain.ISODateLayout))
	query.Set("to", end.Format(domain.ISODateLayout))
	h.redirect(w, r, sickDaysPath+"?"+query.Encode())
}

type sickDaysStatisticsRow struct {
	*sickdays.DetailedStatistics
	SickDays      sickdays.SickDays `json:"sickDays"`
	ChildSickDays sickdays.SickDays `json:"childSickDays"`
}

// GetSickDaysStatistics 返回每个人的病假明细
func (h *Handler) GetSickDaysStatistics(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Person)

	period, ok := h.requestedPeriod(r)
	if !ok {
		h.errorResponse(w, r, "查询的时间段不合法")
		return
	}

	statistics, err := h.statistics.GetAll(myInfo, period.StartDate, period.EndDate)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	rows := make([]sickDaysStatisticsRow, 0, len(statistics))
	for _, statistic := range statistics {
		rows = append(rows, sickDaysStatisticsRow{
			DetailedStatistics: statistic,
			SickDays:           statistic.GetSickDays(period.StartDate, period.EndDate),
			ChildSickDays:      statistic.GetChildSickDays(period.StartDate, period.EndDate),
		})
	}

	h.successResponse(w, r, "获取病假明细成功", rows)
}
