package application

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

var (
	ErrNotPermitted           = errors.New("not permitted")
	ErrApplicationNotEditable = errors.New("application can only be edited while waiting")
	ErrRemindedToday          = errors.New("application has already been reminded today")
	ErrRemindTooEarly         = errors.New("application cannot be reminded on the day it was applied")
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

type Repository interface {
	CreateApplication(application *domain.Application) error
	UpdateApplication(application *domain.Application) error
	GetDepartmentsOfMember(personID int64) ([]*domain.Department, error)
	GetActivePersonsByRole(role domain.Role) ([]*domain.Person, error)
	GetPersonsByIDs(ids []int64) ([]*domain.Person, error)
}

type MailPublisher interface {
	Publish(ctx context.Context, msg domain.MailMessage) error
}

type Workflow struct {
	repository Repository
	mailer     MailPublisher
	now        func() time.Time
}

func NewWorkflow(repo Repository, mailer MailPublisher) *Workflow {
	return &Workflow{
		repository: repo,
		mailer:     mailer,
		now:        time.Now,
	}
}

func (w *Workflow) today() time.Time {
	return domain.Date(w.now())
}

// Apply 提交新的申请。办公室和老板可以替他人提交
func (w *Workflow) Apply(applier *domain.Person, application *domain.Application) error {
	if application.Person == nil {
		application.Person = applier
	}
	if application.Person.ID != applier.ID && !applier.HasAnyRole(domain.RoleOffice, domain.RoleBoss) {
		return ErrNotPermitted
	}

	application.Applier = applier
	application.Status = domain.ApplicationStatusWaiting
	application.ApplicationDate = w.today()

	if err := w.repository.CreateApplication(application); err != nil {
		return err
	}

	w.sendApplicationMail(domain.MailTypeApplicationApplied, []*domain.Person{application.Person}, application)

	managers, err := w.ResponsibleManagers(application)
	if err != nil {
		slog.Error("无法获取申请的审批人", "application", application.ID, "error", err)
		return nil
	}
	w.sendApplicationMail(domain.MailTypeApplicationAppliedManagement, managers, application)

	return nil
}

// Edit 只有待审批的申请可以修改，且只能由申请人本人修改
func (w *Workflow) Edit(actor *domain.Person, application *domain.Application, form *Form) (*domain.Application, error) {
	if application.Status != domain.ApplicationStatusWaiting {
		return nil, ErrApplicationNotEditable
	}
	if !isOwnApplication(actor, application) {
		return nil, ErrNotPermitted
	}
	// 与提交时相同，只有办公室和老板可以把申请改到他人名下
	if form.Person != nil && form.Person.ID != application.Person.ID && !actor.HasAnyRole(domain.RoleOffice, domain.RoleBoss) {
		return nil, ErrNotPermitted
	}

	edited := Merge(application, form)
	if edited.Person == nil {
		edited.Person = application.Person
	}
	today := w.today()
	edited.EditedDate = &today

	if err := w.repository.UpdateApplication(edited); err != nil {
		return nil, err
	}

	return edited, nil
}

func isOwnApplication(actor *domain.Person, application *domain.Application) bool {
	if application.Person != nil && application.Person.ID == actor.ID {
		return true
	}
	return application.Applier != nil && application.Applier.ID == actor.ID
}

// nextAllowedStatus 计算 actor 同意后申请的状态，无权审批时返回 ErrNotPermitted
func (w *Workflow) nextAllowedStatus(actor *domain.Person, application *domain.Application) (domain.ApplicationStatus, error) {
	if actor.HasRole(domain.RoleBoss) {
		return domain.ApplicationStatusAllowed, nil
	}

	// 除老板外，任何人不能审批自己的申请
	if application.Person.ID == actor.ID {
		return "", ErrNotPermitted
	}

	departments, err := w.repository.GetDepartmentsOfMember(application.Person.ID)
	if err != nil {
		return "", err
	}

	isSecondStageAuthority := actor.HasRole(domain.RoleSecondStageAuthority) && slices.ContainsFunc(departments, func(d *domain.Department) bool {
		return d.IsSecondStageAuthority(actor.ID)
	})
	if isSecondStageAuthority {
		return domain.ApplicationStatusAllowed, nil
	}

	isDepartmentHead := actor.HasRole(domain.RoleDepartmentHead) && slices.ContainsFunc(departments, func(d *domain.Department) bool {
		return d.IsDepartmentHead(actor.ID)
	})
	if !isDepartmentHead {
		return "", ErrNotPermitted
	}

	twoStage := slices.ContainsFunc(departments, func(d *domain.Department) bool {
		return d.TwoStageApproval && d.IsDepartmentHead(actor.ID)
	})
	if !twoStage {
		return domain.ApplicationStatusAllowed, nil
	}

	// 两级审批时部门负责人只能做第一级
	if application.Status == domain.ApplicationStatusTemporaryAllowed {
		return "", ErrNotPermitted
	}
	return domain.ApplicationStatusTemporaryAllowed, nil
}

func (w *Workflow) Allow(actor *domain.Person, application *domain.Application) error {
	if !application.Status.IsWaiting() {
		return domain.ErrInvalidStatusTransition
	}

	next, err := w.nextAllowedStatus(actor, application)
	if err != nil {
		return err
	}

	if err := application.TransitionTo(next); err != nil {
		return err
	}
	application.Boss = actor

	if err := w.repository.UpdateApplication(application); err != nil {
		return err
	}

	if next == domain.ApplicationStatusTemporaryAllowed {
		w.sendApplicationMail(domain.MailTypeApplicationTemporaryAllowed, []*domain.Person{application.Person}, application)

		// 通知二级审批人处理
		authorities, err := w.secondStageAuthorities(application)
		if err != nil {
			slog.Error("无法获取二级审批人", "application", application.ID, "error", err)
			return nil
		}
		w.sendApplicationMail(domain.MailTypeApplicationAppliedManagement, authorities, application)
		return nil
	}

	w.sendApplicationMail(domain.MailTypeApplicationAllowed, []*domain.Person{application.Person}, application)
	return nil
}

func (w *Workflow) Reject(actor *domain.Person, application *domain.Application) error {
	if !application.Status.IsWaiting() {
		return domain.ErrInvalidStatusTransition
	}

	if _, err := w.nextAllowedStatus(actor, application); err != nil {
		return err
	}

	if err := application.TransitionTo(domain.ApplicationStatusRejected); err != nil {
		return err
	}
	application.Boss = actor

	if err := w.repository.UpdateApplication(application); err != nil {
		return err
	}

	w.sendApplicationMail(domain.MailTypeApplicationRejected, []*domain.Person{application.Person}, application)
	return nil
}

// Revoke 撤回尚未批准的申请
func (w *Workflow) Revoke(actor *domain.Person, application *domain.Application) error {
	if !isOwnApplication(actor, application) && !actor.HasRole(domain.RoleOffice) {
		return ErrNotPermitted
	}

	if err := application.TransitionTo(domain.ApplicationStatusRevoked); err != nil {
		return err
	}
	today := w.today()
	application.CancelDate = &today

	if err := w.repository.UpdateApplication(application); err != nil {
		return err
	}

	w.sendApplicationMail(domain.MailTypeApplicationRevoked, []*domain.Person{application.Person}, application)
	return nil
}

// Cancel 办公室直接取消已批准的申请；申请人本人则发起取消请求，由办公室处理
func (w *Workflow) Cancel(actor *domain.Person, application *domain.Application) error {
	today := w.today()

	if actor.HasRole(domain.RoleOffice) {
		if err := application.TransitionTo(domain.ApplicationStatusCancelled); err != nil {
			return err
		}
		application.CancelDate = &today

		if err := w.repository.UpdateApplication(application); err != nil {
			return err
		}

		w.sendApplicationMail(domain.MailTypeApplicationCancelled, []*domain.Person{application.Person}, application)
		return nil
	}

	if !isOwnApplication(actor, application) {
		return ErrNotPermitted
	}

	if err := application.TransitionTo(domain.ApplicationStatusAllowedCancellationRequested); err != nil {
		return err
	}

	if err := w.repository.UpdateApplication(application); err != nil {
		return err
	}

	offices, err := w.repository.GetActivePersonsByRole(domain.RoleOffice)
	if err != nil {
		slog.Error("无法获取办公室人员", "application", application.ID, "error", err)
		return nil
	}
	w.sendApplicationMail(domain.MailTypeApplicationCancellationRequested, offices, application)
	return nil
}

func (w *Workflow) DeclineCancellationRequest(actor *domain.Person, application *domain.Application) error {
	if !actor.HasRole(domain.RoleOffice) {
		return ErrNotPermitted
	}
	if application.Status != domain.ApplicationStatusAllowedCancellationRequested {
		return domain.ErrInvalidStatusTransition
	}

	if err := application.TransitionTo(domain.ApplicationStatusAllowed); err != nil {
		return err
	}

	if err := w.repository.UpdateApplication(application); err != nil {
		return err
	}

	w.sendApplicationMail(domain.MailTypeApplicationCancellationDeclined, []*domain.Person{application.Person}, application)
	return nil
}

// Remind 申请人催促审批人处理，每天最多一次
func (w *Workflow) Remind(actor *domain.Person, application *domain.Application) error {
	if !isOwnApplication(actor, application) {
		return ErrNotPermitted
	}
	if !application.Status.IsWaiting() {
		return domain.ErrInvalidStatusTransition
	}

	today := w.today()
	if application.RemindDate != nil && application.RemindDate.Equal(today) {
		return ErrRemindedToday
	}
	if application.ApplicationDate.Equal(today) {
		return ErrRemindTooEarly
	}

	application.RemindDate = &today
	if err := w.repository.UpdateApplication(application); err != nil {
		return err
	}

	managers, err := w.ResponsibleManagers(application)
	if err != nil {
		slog.Error("无法获取申请的审批人", "application", application.ID, "error", err)
		return nil
	}
	w.sendApplicationMail(domain.MailTypeWaitingApplicationReminder, managers, application)
	return nil
}

// ResponsibleManagers 返回需要处理该申请的人：所有老板、申请人所在部门的负责人，
// 两级审批中已通过第一级时再加上二级审批人。结果去重且不包含申请人本人和已离职人员
func (w *Workflow) ResponsibleManagers(application *domain.Application) ([]*domain.Person, error) {
	bosses, err := w.repository.GetActivePersonsByRole(domain.RoleBoss)
	if err != nil {
		return nil, err
	}

	departments, err := w.repository.GetDepartmentsOfMember(application.Person.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0)
	for _, department := range departments {
		ids = append(ids, department.DepartmentHeadIDs...)
		if application.Status == domain.ApplicationStatusTemporaryAllowed {
			ids = append(ids, department.SecondStageAuthorityIDs...)
		}
	}

	managers, err := w.repository.GetPersonsByIDs(ids)
	if err != nil {
		return nil, err
	}

	return distinctActive(append(bosses, managers...), application.Person.ID), nil
}

func (w *Workflow) secondStageAuthorities(application *domain.Application) ([]*domain.Person, error) {
	departments, err := w.repository.GetDepartmentsOfMember(application.Person.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0)
	for _, department := range departments {
		if department.TwoStageApproval {
			ids = append(ids, department.SecondStageAuthorityIDs...)
		}
	}

	authorities, err := w.repository.GetPersonsByIDs(ids)
	if err != nil {
		return nil, err
	}

	return distinctActive(authorities, application.Person.ID), nil
}

func distinctActive(persons []*domain.Person, excludeID int64) []*domain.Person {
	seen := make(map[int64]bool)
	result := make([]*domain.Person, 0, len(persons))
	for _, person := range persons {
		if person == nil || person.ID == excludeID || seen[person.ID] || !person.IsActive() {
			continue
		}
		seen[person.ID] = true
		result = append(result, person)
	}
	return result
}

// 邮件发送失败不影响申请本身的状态变更，只记录日志
func (w *Workflow) sendApplicationMail(mailType string, recipients []*domain.Person, application *domain.Application) {
	for _, recipient := range recipients {
		if recipient == nil || recipient.Email == "" {
			continue
		}

		msg := domain.MailMessage{
			Type: mailType,
			To:   recipient.Email,
			Data: domain.NewApplicationMailData(recipient, application),
		}
		if err := w.mailer.Publish(context.Background(), msg); err != nil {
			slog.Error("无法发送邮件", "type", mailType, "to", recipient.Email, "application", application.ID, "error", err)
		}
	}
}
