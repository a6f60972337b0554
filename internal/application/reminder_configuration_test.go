package application

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/scheduler"
)

type recordingRegistrar struct {
	tasks []scheduler.CronTask
	err   error
}

func (r *recordingRegistrar) AddCronTask(task scheduler.CronTask) error {
	if r.err != nil {
		return r.err
	}
	r.tasks = append(r.tasks, task)
	return nil
}

type countingNotifier struct {
	waiting  int
	upcoming int
}

func (n *countingNotifier) SendWaitingApplicationsReminderNotification() error {
	n.waiting++
	return nil
}

func (n *countingNotifier) SendUpcomingApplicationsReminderNotification() error {
	n.upcoming++
	return errors.New("logged, not propagated")
}

func TestConfigureTasks(t *testing.T) {
	cfg := &config.Config{}
	cfg.Application.ReminderNotification.Cron = "0 0 7 * * *"
	cfg.Application.UpcomingNotification.Cron = "0 30 6 * * MON-FRI"

	notifier := &countingNotifier{}
	registrar := &recordingRegistrar{}

	require.NoError(t, NewReminderConfiguration(cfg, notifier).ConfigureTasks(registrar))
	require.Len(t, registrar.tasks, 2)

	require.Equal(t, "0 0 7 * * *", registrar.tasks[0].Expression)
	registrar.tasks[0].Run()
	require.Equal(t, 1, notifier.waiting)
	require.Equal(t, 0, notifier.upcoming)

	require.Equal(t, "0 30 6 * * MON-FRI", registrar.tasks[1].Expression)
	registrar.tasks[1].Run()
	require.Equal(t, 1, notifier.waiting)
	require.Equal(t, 1, notifier.upcoming)
}

func TestConfigureTasksWithRealScheduler(t *testing.T) {
	cfg := &config.Config{}
	cfg.Application.ReminderNotification.Cron = "0 0 7 * * *"
	cfg.Application.UpcomingNotification.Cron = "0 0 7 * * *"

	require.NoError(t, NewReminderConfiguration(cfg, &countingNotifier{}).ConfigureTasks(scheduler.New(nil)))
}

func TestConfigureTasksPropagatesRegistrationError(t *testing.T) {
	cfg := &config.Config{}
	registrar := &recordingRegistrar{err: errors.New("invalid")}

	require.Error(t, NewReminderConfiguration(cfg, &countingNotifier{}).ConfigureTasks(registrar))
}
