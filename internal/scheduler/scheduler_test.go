package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAddCronTaskRejectsInvalidExpression(t *testing.T) {
	s := New(time.UTC)

	err := s.AddCronTask(CronTask{Name: "invalid", Expression: "0 7 * * *", Run: func() {}})
	require.Error(t, err, "five field expressions lack the seconds field")

	err = s.AddCronTask(CronTask{Name: "valid", Expression: "0 0 7 * * *", Run: func() {}})
	require.NoError(t, err)
	require.Len(t, s.cron.Entries(), 1)
}

func TestRunExecutesTasksUntilContextDone(t *testing.T) {
	s := New(time.UTC)

	var calls atomic.Int32
	require.NoError(t, s.AddCronTask(CronTask{Name: "every-second", Expression: "* * * * * *", Run: func() {
		calls.Add(1)
	}}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	require.Eventually(t, func() bool { return calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestTaskPanicIsRecovered(t *testing.T) {
	s := New(time.UTC)

	var calls atomic.Int32
	require.NoError(t, s.AddCronTask(CronTask{Name: "panics", Expression: "* * * * * *", Run: func() {
		calls.Add(1)
		panic("boom")
	}}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = s.Run(ctx)
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 4*time.Second, 50*time.Millisecond)
}
