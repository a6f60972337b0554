package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/utils"
)

type sickNoteRequest struct {
	PersonID     int64                   `json:"personId" validate:"required"`
	Category     domain.SickNoteCategory `json:"category" validate:"required,oneof=SICK_NOTE SICK_NOTE_CHILD"`
	StartDate    string                  `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate      string                  `json:"endDate" validate:"required,datetime=2006-01-02"`
	DayLength    domain.DayLength        `json:"dayLength" validate:"required,oneof=FULL MORNING NOON"`
	AubStartDate string                  `json:"aubStartDate" validate:"omitempty,datetime=2006-01-02"`
	AubEndDate   string                  `json:"aubEndDate" validate:"omitempty,datetime=2006-01-02"`
}

func optionalDate(value string) *time.Time {
	t, ok := domain.ParseDate(value)
	if !ok {
		return nil
	}
	return &t
}

// apply 把请求中的字段写入 sickNote，日期格式已经由 validator 检查过
func (req *sickNoteRequest) apply(sickNote *domain.SickNote) {
	sickNote.Category = req.Category
	sickNote.StartDate, _ = domain.ParseDate(req.StartDate)
	sickNote.EndDate, _ = domain.ParseDate(req.EndDate)
	sickNote.DayLength = req.DayLength
	sickNote.AubStartDate = optionalDate(req.AubStartDate)
	sickNote.AubEndDate = optionalDate(req.AubEndDate)
}

// canSeePerson 判断 person 是否在查看者可见的人员范围内
func (h *Handler) canSeePerson(viewer *domain.Person, personID int64) (bool, error) {
	persons, err := h.overview.VisiblePersons(viewer)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(persons, func(p *domain.Person) bool {
		return p.ID == personID
	}), nil
}

// requestedPeriod 从查询参数中读取 from 和 to，无法解析的参数按缺省处理
func (h *Handler) requestedPeriod(r *http.Request) (domain.FilterPeriod, bool) {
	query := r.URL.Query()
	valid := true

	var start, end *time.Time
	if value := query.Get("from"); value != "" {
		if start = optionalDate(value); start == nil {
			valid = false
		}
	}
	if value := query.Get("to"); value != "" {
		if end = optionalDate(value); end == nil {
			valid = false
		}
	}

	period := domain.NewFilterPeriod(start, end, h.today())
	return period, valid && period.IsValid()
}

func (h *Handler) today() time.Time {
	return domain.Date(time.Now())
}

func (h *Handler) GetSickNotes(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Person)

	period, ok := h.requestedPeriod(r)
	if !ok {
		h.errorResponse(w, r, "查询的时间段不合法")
		return
	}

	persons, err := h.overview.VisiblePersons(myInfo)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if len(persons) == 0 {
		h.successResponse(w, r, "获取病假列表成功", make([]*domain.SickNote, 0))
		return
	}

	ids := make([]int64, 0, len(persons))
	for _, person := range persons {
		ids = append(ids, person.ID)
	}

	sickNotes, err := h.repository.GetSickNotesByStatusesPersonsAndPeriod(
		[]domain.SickNoteStatus{domain.SickNoteStatusActive}, ids, period.StartDate, period.EndDate)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取病假列表成功", sickNotes)
}

func (h *Handler) CreateSickNote(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Person)

	var req sickNoteRequest
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	person, err := h.repository.GetPersonByID(req.PersonID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "人员不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	sickNote := &domain.SickNote{
		Person:  person,
		Applier: myInfo,
		Status:  domain.SickNoteStatusActive,
	}
	req.apply(sickNote)

	if err := utils.ValidateSickNote(sickNote); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.CreateSickNote(sickNote); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建病假成功", sickNote)
}

func (h *Handler) GetSickNote(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Person)
	sickNote := r.Context().Value(SickNoteCtx).(*domain.SickNote)

	ok, err := h.canSeePerson(myInfo, sickNote.Person.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !ok {
		h.errorResponse(w, r, "权限不足")
		return
	}

	h.successResponse(w, r, "获取病假成功", sickNote)
}

func (h *Handler) UpdateSickNote(w http.ResponseWriter, r *http.Request) {
	sickNote := r.Context().Value(SickNoteCtx).(*domain.SickNote)

	if !sickNote.IsActive() {
		h.errorResponse(w, r, "只有生效中的病假可以修改")
		return
	}

	var req sickNoteRequest
	req.PersonID = sickNote.Person.ID
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	// 病假所属人员不允许修改
	req.PersonID = sickNote.Person.ID
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	req.apply(sickNote)
	if err := utils.ValidateSickNote(sickNote); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.UpdateSickNote(sickNote); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "病假已被他人修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新病假成功", sickNote)
}

func (h *Handler) CancelSickNote(w http.ResponseWriter, r *http.Request) {
	sickNote := r.Context().Value(SickNoteCtx).(*domain.SickNote)

	if !sickNote.IsActive() {
		h.errorResponse(w, r, "只有生效中的病假可以取消")
		return
	}

	sickNote.Status = domain.SickNoteStatusCancelled
	if err := h.repository.UpdateSickNote(sickNote); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "病假已被他人修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "取消病假成功", sickNote)
}
