package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

type ReminderRepository interface {
	Repository
	GetApplicationsByStatuses(statuses []domain.ApplicationStatus) ([]*domain.Application, error)
	GetApplicationsByStatusesAndStartDate(statuses []domain.ApplicationStatus, startDate time.Time) ([]*domain.Application, error)
}

type ReminderService struct {
	cfg        *config.Config
	repository ReminderRepository
	workflow   *Workflow
	mailer     MailPublisher
	now        func() time.Time
}

func NewReminderService(cfg *config.Config, repo ReminderRepository, mailer MailPublisher) *ReminderService {
	return &ReminderService{
		cfg:        cfg,
		repository: repo,
		workflow:   NewWorkflow(repo, mailer),
		mailer:     mailer,
		now:        time.Now,
	}
}

func (s *ReminderService) today() time.Time {
	return domain.Date(s.now())
}

// SendWaitingApplicationsReminderNotification 提醒审批人处理长时间未处理的申请，
// 距离上次提醒（或提交日期）已满配置的天数才会再次提醒
func (s *ReminderService) SendWaitingApplicationsReminderNotification() error {
	settings := s.cfg.Application
	if !settings.RemindForWaitingApplications {
		return nil
	}

	applications, err := s.repository.GetApplicationsByStatuses([]domain.ApplicationStatus{
		domain.ApplicationStatusWaiting,
		domain.ApplicationStatusTemporaryAllowed,
	})
	if err != nil {
		return err
	}

	today := s.today()
	var errs []error
	for _, application := range applications {
		last := application.ApplicationDate
		if application.RemindDate != nil {
			last = *application.RemindDate
		}
		if last.AddDate(0, 0, settings.DaysBeforeRemindForWaitingApplications).After(today) {
			continue
		}

		managers, err := s.workflow.ResponsibleManagers(application)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.workflow.sendApplicationMail(domain.MailTypeWaitingApplicationReminder, managers, application)

		application.RemindDate = &today
		if err := s.repository.UpdateApplication(application); err != nil {
			errs = append(errs, err)
			continue
		}

		slog.Info("已提醒审批人处理申请", "application", application.ID, "recipients", len(managers))
	}

	return errors.Join(errs...)
}

// SendUpcomingApplicationsReminderNotification 提醒申请人和代班人假期即将开始
func (s *ReminderService) SendUpcomingApplicationsReminderNotification() error {
	settings := s.cfg.Application
	var errs []error

	if settings.RemindForUpcomingApplications {
		if err := s.remindUpcomingApplications(settings.DaysBeforeUpcomingApplicationsReminder); err != nil {
			errs = append(errs, err)
		}
	}

	if settings.RemindForUpcomingHolidayReplacement {
		if err := s.remindUpcomingHolidayReplacements(settings.DaysBeforeUpcomingHolidayReplacementReminder); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (s *ReminderService) remindUpcomingApplications(days int) error {
	startDate := s.today().AddDate(0, 0, days)
	applications, err := s.repository.GetApplicationsByStatusesAndStartDate([]domain.ApplicationStatus{domain.ApplicationStatusAllowed}, startDate)
	if err != nil {
		return err
	}

	for _, application := range applications {
		s.workflow.sendApplicationMail(domain.MailTypeUpcomingApplicationReminder, []*domain.Person{application.Person}, application)
	}

	return nil
}

func (s *ReminderService) remindUpcomingHolidayReplacements(days int) error {
	startDate := s.today().AddDate(0, 0, days)
	applications, err := s.repository.GetApplicationsByStatusesAndStartDate([]domain.ApplicationStatus{domain.ApplicationStatusAllowed}, startDate)
	if err != nil {
		return err
	}

	for _, application := range applications {
		for _, replacement := range application.HolidayReplacements {
			if replacement.Person == nil || replacement.Person.Email == "" {
				continue
			}

			msg := domain.MailMessage{
				Type: domain.MailTypeUpcomingHolidayReplacement,
				To:   replacement.Person.Email,
				Data: domain.HolidayReplacementMailData{
					RecipientName: replacement.Person.NiceName(),
					PersonName:    application.Person.NiceName(),
					ApplicationID: application.ID,
					StartDate:     application.StartDate.Format(domain.ISODateLayout),
					EndDate:       application.EndDate.Format(domain.ISODateLayout),
					Note:          replacement.Note,
				},
			}
			if err := s.mailer.Publish(context.Background(), msg); err != nil {
				slog.Error("无法发送邮件", "type", msg.Type, "to", msg.To, "application", application.ID, "error", err)
			}
		}
	}

	return nil
}
