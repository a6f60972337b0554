package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type ReminderNotification struct {
	Cron string `env:"CRON" envDefault:"0 0 7 * * *"`
}

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	InitialAdmin struct {
		Username  string `env:"USERNAME" envDefault:"admin"`
		Password  string `env:"PASSWORD,required"`
		FirstName string `env:"FIRST_NAME" envDefault:"管理员"`
		LastName  string `env:"LAST_NAME" envDefault:""`
		Email     string `env:"EMAIL,required"`
	} `envPrefix:"INITIAL_ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"1209600"` // 14 天
		Secret     string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Seed struct {
		User struct {
			Password string `env:"PASSWORD" envDefault:"secret"`
		} `envPrefix:"USER_"`
	} `envPrefix:"SEED_"`
	Email struct {
		UserDomain string `env:"USER_DOMAIN" envDefault:"example.org"`
		SMTP       struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host                string `env:"HOST" envDefault:"localhost"`
		Port                int    `env:"PORT" envDefault:"6379"`
		Password            string `env:"PASSWORD"`
		ConnectTimeout      int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationExpiration int    `env:"OPERATION_EXPIRATION" envDefault:"10"`
	} `envPrefix:"REDIS_"`
	OTP struct {
		Expiration int `env:"EXPIRATION" envDefault:"900"` // 15 分钟
	} `envPrefix:"OTP_"`
	NewUser struct {
		PasswordLength int `env:"PASSWORD_LENGTH" envDefault:"12"`
	} `envPrefix:"NEW_USER_"`
	Flash struct {
		Expiration int `env:"EXPIRATION" envDefault:"300"` // 5 分钟
	} `envPrefix:"FLASH_"`
	Application struct {
		// 每天 07:00 检查是否需要提醒审批人处理待审批的申请
		ReminderNotification ReminderNotification `envPrefix:"REMINDER_NOTIFICATION_"`
		// 每天 07:00 提醒即将开始的假期
		UpcomingNotification ReminderNotification `envPrefix:"UPCOMING_NOTIFICATION_"`

		RemindForWaitingApplications                 bool `env:"REMIND_FOR_WAITING_APPLICATIONS" envDefault:"true"`
		DaysBeforeRemindForWaitingApplications       int  `env:"DAYS_BEFORE_REMIND_FOR_WAITING_APPLICATIONS" envDefault:"2"`
		RemindForUpcomingApplications                bool `env:"REMIND_FOR_UPCOMING_APPLICATIONS" envDefault:"true"`
		DaysBeforeUpcomingApplicationsReminder       int  `env:"DAYS_BEFORE_UPCOMING_APPLICATIONS_REMINDER" envDefault:"3"`
		RemindForUpcomingHolidayReplacement          bool `env:"REMIND_FOR_UPCOMING_HOLIDAY_REPLACEMENT" envDefault:"true"`
		DaysBeforeUpcomingHolidayReplacementReminder int  `env:"DAYS_BEFORE_UPCOMING_HOLIDAY_REPLACEMENT_REMINDER" envDefault:"3"`
	} `envPrefix:"APPLICATION_"`
	Time struct {
		TimeZoneID         string `env:"TIME_ZONE_ID" envDefault:"Europe/Berlin"`
		WorkDayBeginHour   int    `env:"WORK_DAY_BEGIN_HOUR" envDefault:"8"`
		WorkDayBeginMinute int    `env:"WORK_DAY_BEGIN_MINUTE" envDefault:"0"`
		WorkDayEndHour     int    `env:"WORK_DAY_END_HOUR" envDefault:"16"`
		WorkDayEndMinute   int    `env:"WORK_DAY_END_MINUTE" envDefault:"0"`
	} `envPrefix:"TIME_"`
}

// 与定时任务注册时使用的解析器保持一致，包含秒字段
var CronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

func LoadConfig() (*Config, error) {
	// .env 文件是可选的
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	crons := map[string]string{
		"APPLICATION_REMINDER_NOTIFICATION_CRON": c.Application.ReminderNotification.Cron,
		"APPLICATION_UPCOMING_NOTIFICATION_CRON": c.Application.UpcomingNotification.Cron,
	}
	for name, expr := range crons {
		if _, err := CronParser.Parse(expr); err != nil {
			return fmt.Errorf("%s 不是合法的 cron 表达式: %w", name, err)
		}
	}

	begin := c.Time.WorkDayBeginHour*60 + c.Time.WorkDayBeginMinute
	end := c.Time.WorkDayEndHour*60 + c.Time.WorkDayEndMinute
	if begin >= end {
		return errors.New("工作日开始时间必须早于结束时间")
	}

	return nil
}
