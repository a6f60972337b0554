package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// CronTask 是一个按 cron 表达式（包含秒字段）执行的任务
type CronTask struct {
	Name       string
	Expression string
	Run        func()
}

type TaskRegistrar interface {
	AddCronTask(task CronTask) error
}

// 把 cron 内部日志转给 slog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error(msg, append(keysAndValues, "error", err)...)
}

type Scheduler struct {
	cron *cron.Cron
}

func New(location *time.Location) *Scheduler {
	if location == nil {
		location = time.Local
	}

	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(location),
			cron.WithLogger(cronLogger{}),
			cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
		),
	}
}

func (s *Scheduler) AddCronTask(task CronTask) error {
	_, err := s.cron.AddFunc(task.Expression, func() {
		start := time.Now()
		task.Run()
		slog.Info("定时任务执行完毕", "task", task.Name, "duration", time.Since(start))
	})
	if err != nil {
		return err
	}

	slog.Info("已注册定时任务", "task", task.Name, "cron", task.Expression)
	return nil
}

// Run 启动调度器并阻塞到 ctx 结束，返回前等待正在执行的任务完成
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	<-ctx.Done()

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()

	return nil
}
