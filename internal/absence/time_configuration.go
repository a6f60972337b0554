package absence

import (
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/config"
)

// TimeConfiguration 以距离零点的时长表示上午和下午半天假的起止时间，中午取工作日开始和结束的中点
type TimeConfiguration struct {
	MorningStart time.Duration
	MorningEnd   time.Duration
	NoonStart    time.Duration
	NoonEnd      time.Duration
	Location     *time.Location
}

func NewTimeConfiguration(cfg *config.Config) (*TimeConfiguration, error) {
	location, err := time.LoadLocation(cfg.Time.TimeZoneID)
	if err != nil {
		return nil, fmt.Errorf("无效的时区 %q: %w", cfg.Time.TimeZoneID, err)
	}

	begin := time.Duration(cfg.Time.WorkDayBeginHour)*time.Hour + time.Duration(cfg.Time.WorkDayBeginMinute)*time.Minute
	end := time.Duration(cfg.Time.WorkDayEndHour)*time.Hour + time.Duration(cfg.Time.WorkDayEndMinute)*time.Minute
	noon := begin + (end-begin)/2

	return &TimeConfiguration{
		MorningStart: begin,
		MorningEnd:   noon,
		NoonStart:    noon,
		NoonEnd:      end,
		Location:     location,
	}, nil
}

// ClockTime 把时长格式化为 15:04:05
func ClockTime(d time.Duration) string {
	return time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(d).Format("15:04:05")
}
