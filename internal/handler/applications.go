package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"slices"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/application"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

var waitingStatuses = []domain.ApplicationStatus{
	domain.ApplicationStatusWaiting,
	domain.ApplicationStatusTemporaryAllowed,
}

// workflowError 把工作流返回的错误转换为响应
func (h *Handler) workflowError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, application.ErrNotPermitted):
		h.errorResponse(w, r, "权限不足")
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		h.errorResponse(w, r, "申请当前的状态不允许该操作")
	case errors.Is(err, application.ErrApplicationNotEditable):
		h.errorResponse(w, r, "只有待审批的申请可以修改")
	case errors.Is(err, application.ErrRemindedToday):
		h.errorResponse(w, r, "今天已经提醒过审批人")
	case errors.Is(err, application.ErrRemindTooEarly):
		h.errorResponse(w, r, "提交申请当天不能提醒审批人")
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "申请已被他人修改，请刷新后重试")
	default:
		h.internalServerError(w, r, err)
	}
}

// managedMemberIDs 返回 person 作为部门负责人或二级审批人所管理的成员
func (h *Handler) managedMemberIDs(person *domain.Person) ([]int64, error) {
	departments := make([]*domain.Department, 0)
	if person.HasRole(domain.RoleDepartmentHead) {
		ds, err := h.repository.GetDepartmentsOfDepartmentHead(person.ID)
		if err != nil {
			return nil, err
		}
		departments = append(departments, ds...)
	}
	if person.HasRole(domain.RoleSecondStageAuthority) {
		ds, err := h.repository.GetDepartmentsOfSecondStageAuthority(person.ID)
		if err != nil {
			return nil, err
		}
		departments = append(departments, ds...)
	}

	ids := make([]int64, 0)
	for _, department := range departments {
		ids = append(ids, department.MemberIDs...)
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

func (h *Handler) canViewApplication(person *domain.Person, app *domain.Application) (bool, error) {
	if app.Person.ID == person.ID || (app.Applier != nil && app.Applier.ID == person.ID) {
		return true, nil
	}
	if person.HasAnyRole(domain.RoleBoss, domain.RoleOffice) {
		return true, nil
	}

	memberIDs, err := h.managedMemberIDs(person)
	if err != nil {
		return false, err
	}
	_, found := slices.BinarySearch(memberIDs, app.Person.ID)
	return found, nil
}

func (h *Handler) GetMyApplications(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Person)

	applications, err := h.repository.GetApplicationsByPersonID(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取申请列表成功", applications)
}

// GetWaitingApplications 返回当前用户可以审批的待审批申请
func (h *Handler) GetWaitingApplications(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Person)

	applications, err := h.repository.GetApplicationsByStatuses(waitingStatuses)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if myInfo.HasAnyRole(domain.RoleBoss, domain.RoleOffice) {
		h.successResponse(w, r, "获取待审批申请成功", applications)
		return
	}

	memberIDs, err := h.managedMemberIDs(myInfo)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	visible := make([]*domain.Application, 0)
	for _, app := range applications {
		if app.Person.ID == myInfo.ID {
			continue
		}
		if _, found := slices.BinarySearch(memberIDs, app.Person.ID); found {
			visible = append(visible, app)
		}
	}

	h.successResponse(w, r, "获取待审批申请成功", visible)
}

func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Person)
	app := r.Context().Value(ApplicationCtx).(*domain.Application)

	ok, err := h.canViewApplication(myInfo, app)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !ok {
		h.errorResponse(w, r, "权限不足")
		return
	}

	attributes, err := h.popFlash(r, myInfo.ID, applicationPath(app.ID))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	var applySuccess, editSuccess bool
	if _, err := attributes.Decode(flashApplySuccess, &applySuccess); err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if _, err := attributes.Decode(flashEditSuccess, &editSuccess); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取申请成功", map[string]any{
		"application":  app,
		"applySuccess": applySuccess,
		"editSuccess":  editSuccess,
	})
}

// formState 从 flash 中恢复上一次提交到 target 失败的表单，没有时返回 fallback
func (h *Handler) formState(r *http.Request, personID int64, target string, fallback *application.Form) (*application.Form, application.FieldErrors, error) {
	attributes, err := h.popFlash(r, personID, target)
	if err != nil {
		return nil, nil, err
	}

	form := &application.Form{}
	found, err := attributes.Decode(flashApplicationForm, form)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		form = fallback
	}

	errs := application.FieldErrors{}
	if _, err := attributes.Decode(flashErrors, &errs); err != nil {
		return nil, nil, err
	}

	return form, errs, nil
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, form *application.Form, errs application.FieldErrors) {
	vacationTypes, err := h.repository.GetAllVacationTypes()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	active := make([]*domain.VacationType, 0, len(vacationTypes))
	for _, vacationType := range vacationTypes {
		if vacationType.Active {
			active = append(active, vacationType)
		}
	}

	h.successResponse(w, r, "获取申请表单成功", map[string]any{
		"form":          form,
		"errors":        errs,
		"vacationTypes": active,
	})
}

func (h *Handler) GetNewApplicationForm(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Person)

	fallback := &application.Form{
		Person:              myInfo,
		DayLength:           domain.DayLengthFull,
		HolidayReplacements: make([]*domain.HolidayReplacement, 0),
	}

	form, errs, err := h.formState(r, myInfo.ID, newApplicationPath, fallback)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.renderForm(w, r, form, errs)
}

// readApplicationForm 解析并校验表单，defaultPerson 用于未指定申请人的情况
func (h *Handler) readApplicationForm(r *http.Request, defaultPerson *domain.Person) (*application.Form, application.FieldErrors, error) {
	if err := r.ParseForm(); err != nil {
		return nil, nil, err
	}

	form, errs := application.ParseForm(r.PostForm)
	if err := application.Resolve(form, h.repository, errs); err != nil {
		return nil, nil, err
	}
	if form.Person == nil {
		if _, failed := errs["person"]; !failed {
			form.Person = defaultPerson
		}
	}

	return form, h.formValidator.Validate(form, errs), nil
}

// rejectForm 把表单和错误放入 flash 并重定向回表单页
func (h *Handler) rejectForm(w http.ResponseWriter, r *http.Request, personID int64, form *application.Form, errs application.FieldErrors, target string) {
	if err := h.addFlash(r, personID, target, map[string]any{
		flashApplicationForm: form,
		flashErrors:          errs,
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.redirect(w, r, target)
}

func (h *Handler) ApplyForLeave(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Person)

	form, errs, err := h.readApplicationForm(r, myInfo)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if errs.HasErrors() {
		h.rejectForm(w, r, myInfo.ID, form, errs, newApplicationPath)
		return
	}

	app := application.MapToApplication(form)
	if err := h.workflow.Apply(myInfo, app); err != nil {
		if errors.Is(err, application.ErrNotPermitted) {
			errs.Add("person", "无权为他人提交申请")
			h.rejectForm(w, r, myInfo.ID, form, errs, newApplicationPath)
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	if err := h.addFlash(r, myInfo.ID, applicationPath(app.ID), map[string]any{flashApplySuccess: true}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.redirect(w, r, applicationPath(app.ID))
}

func (h *Handler) GetEditApplicationForm(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Person)
	app := r.Context().Value(ApplicationCtx).(*domain.Application)

	ok, err := h.canViewApplication(myInfo, app)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !ok {
		h.errorResponse(w, r, "权限不足")
		return
	}

	if app.Status != domain.ApplicationStatusWaiting {
		h.errorResponse(w, r, "只有待审批的申请可以修改")
		return
	}

	form, errs, err := h.formState(r, myInfo.ID, editApplicationPath(app.ID), application.MapToForm(app))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.renderForm(w, r, form, errs)
}

func (h *Handler) EditApplication(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Person)
	app := r.Context().Value(ApplicationCtx).(*domain.Application)

	form, errs, err := h.readApplicationForm(r, app.Person)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	form.ID = app.ID

	if errs.HasErrors() {
		h.rejectForm(w, r, myInfo.ID, form, errs, editApplicationPath(app.ID))
		return
	}

	edited, err := h.workflow.Edit(myInfo, app, form)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	if err := h.addFlash(r, myInfo.ID, applicationPath(edited.ID), map[string]any{flashEditSuccess: true}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.redirect(w, r, applicationPath(edited.ID))
}

// applicationAction 执行一个状态变更操作并返回变更后的申请
func (h *Handler) applicationAction(action func(*domain.Person, *domain.Application) error, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		myInfo := r.Context().Value(MyInfoCtx).(*domain.Person)
		app := r.Context().Value(ApplicationCtx).(*domain.Application)

		if err := action(myInfo, app); err != nil {
			h.workflowError(w, r, err)
			return
		}

		h.successResponse(w, r, msg, app)
	}
}

func (h *Handler) AllowApplication(w http.ResponseWriter, r *http.Request) {
	h.applicationAction(h.workflow.Allow, "已批准申请")(w, r)
}

func (h *Handler) RejectApplication(w http.ResponseWriter, r *http.Request) {
	h.applicationAction(h.workflow.Reject, "已拒绝申请")(w, r)
}

func (h *Handler) RevokeApplication(w http.ResponseWriter, r *http.Request) {
	h.applicationAction(h.workflow.Revoke, "已撤回申请")(w, r)
}

func (h *Handler) CancelApplication(w http.ResponseWriter, r *http.Request) {
	h.applicationAction(h.workflow.Cancel, "已处理取消请求")(w, r)
}

func (h *Handler) DeclineCancellationRequest(w http.ResponseWriter, r *http.Request) {
	h.applicationAction(h.workflow.DeclineCancellationRequest, "已驳回取消请求")(w, r)
}

func (h *Handler) RemindApplication(w http.ResponseWriter, r *http.Request) {
	h.applicationAction(h.workflow.Remind, "已提醒审批人")(w, r)
}
