package application

import (
	"log/slog"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/scheduler"
)

type ReminderNotifier interface {
	SendWaitingApplicationsReminderNotification() error
	SendUpcomingApplicationsReminderNotification() error
}

type ReminderConfiguration struct {
	cfg      *config.Config
	notifier ReminderNotifier
}

func NewReminderConfiguration(cfg *config.Config, notifier ReminderNotifier) *ReminderConfiguration {
	return &ReminderConfiguration{
		cfg:      cfg,
		notifier: notifier,
	}
}

// ConfigureTasks 依次注册待审批提醒和即将开始提醒两个定时任务
func (c *ReminderConfiguration) ConfigureTasks(registrar scheduler.TaskRegistrar) error {
	tasks := []scheduler.CronTask{
		{
			Name:       "waiting-applications-reminder",
			Expression: c.cfg.Application.ReminderNotification.Cron,
			Run: func() {
				if err := c.notifier.SendWaitingApplicationsReminderNotification(); err != nil {
					slog.Error("待审批申请提醒失败", "error", err)
				}
			},
		},
		{
			Name:       "upcoming-applications-reminder",
			Expression: c.cfg.Application.UpcomingNotification.Cron,
			Run: func() {
				if err := c.notifier.SendUpcomingApplicationsReminderNotification(); err != nil {
					slog.Error("即将开始的假期提醒失败", "error", err)
				}
			},
		},
	}

	for _, task := range tasks {
		if err := registrar.AddCronTask(task); err != nil {
			return err
		}
	}

	return nil
}
