package mailworker

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

var ErrUnsupportedMailType = errors.New("不支持的邮件类型")

type mailKind struct {
	template string
	subject  string
	newData  func() any
}

func applicationMail(file, subject string) mailKind {
	return mailKind{
		template: file,
		subject:  subject,
		newData:  func() any { return &domain.ApplicationMailData{} },
	}
}

var mailKinds = map[string]mailKind{
	domain.MailTypeCreateUser: {
		template: "new_account_email.html",
		subject:  "ECNC 假勤系统 - 账户信息",
		newData:  func() any { return &domain.CreateUserMailData{} },
	},
	domain.MailTypeResetPassword: {
		template: "reset_password_otp_email.html",
		subject:  "ECNC 假勤系统 - 重置密码",
		newData:  func() any { return &domain.ResetPasswordMailData{} },
	},
	domain.MailTypeChangeEmail: {
		template: "change_email_email.html",
		subject:  "ECNC 假勤系统 - 修改邮箱",
		newData:  func() any { return &domain.ChangeEmailMailData{} },
	},
	domain.MailTypeApplicationApplied:               applicationMail("application_applied.html", "ECNC 假勤系统 - 请假申请已提交"),
	domain.MailTypeApplicationAppliedManagement:     applicationMail("application_applied_management.html", "ECNC 假勤系统 - 新的请假申请"),
	domain.MailTypeApplicationTemporaryAllowed:      applicationMail("application_temporary_allowed.html", "ECNC 假勤系统 - 请假申请已通过第一级审批"),
	domain.MailTypeApplicationAllowed:               applicationMail("application_allowed.html", "ECNC 假勤系统 - 请假申请已批准"),
	domain.MailTypeApplicationRejected:              applicationMail("application_rejected.html", "ECNC 假勤系统 - 请假申请已拒绝"),
	domain.MailTypeApplicationRevoked:               applicationMail("application_revoked.html", "ECNC 假勤系统 - 请假申请已撤回"),
	domain.MailTypeApplicationCancelled:             applicationMail("application_cancelled.html", "ECNC 假勤系统 - 请假申请已取消"),
	domain.MailTypeApplicationCancellationRequested: applicationMail("application_cancellation_requested.html", "ECNC 假勤系统 - 取消请假请求"),
	domain.MailTypeApplicationCancellationDeclined:  applicationMail("application_cancellation_declined.html", "ECNC 假勤系统 - 取消请假请求被驳回"),
	domain.MailTypeWaitingApplicationReminder:       applicationMail("waiting_application_reminder.html", "ECNC 假勤系统 - 待审批提醒"),
	domain.MailTypeUpcomingApplicationReminder:      applicationMail("upcoming_application_reminder.html", "ECNC 假勤系统 - 假期即将开始"),
	domain.MailTypeUpcomingHolidayReplacement: {
		template: "upcoming_holiday_replacement.html",
		subject:  "ECNC 假勤系统 - 代班提醒",
		newData:  func() any { return &domain.HolidayReplacementMailData{} },
	},
}

// Sender 是 *mail.Client 中发送邮件所需的部分
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type Worker struct {
	sender    Sender
	from      string
	templates *template.Template
	logger    *slog.Logger
}

func NewWorker(sender Sender, from string, logger *slog.Logger) (*Worker, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Worker{
		sender:    sender,
		from:      from,
		templates: templates,
		logger:    logger,
	}, nil
}

// Compose 根据邮件类型选择模板和主题，构建待发送的邮件
func (w *Worker) Compose(body []byte) (*mail.Msg, error) {
	var message struct {
		Type string          `json:"type"`
		To   string          `json:"to"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &message); err != nil {
		return nil, fmt.Errorf("邮件信息反序列化失败: %w", err)
	}

	kind, ok := mailKinds[message.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMailType, message.Type)
	}

	data := kind.newData()
	if len(message.Data) > 0 {
		if err := json.Unmarshal(message.Data, data); err != nil {
			return nil, fmt.Errorf("邮件数据反序列化失败: %w", err)
		}
	}

	msg := mail.NewMsg()
	if err := msg.From(w.from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := msg.To(message.To); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}
	if err := msg.SetBodyHTMLTemplate(w.templates.Lookup(kind.template), data); err != nil {
		return nil, fmt.Errorf("无法设置邮件正文: %w", err)
	}
	msg.Subject(kind.subject)

	return msg, nil
}

// Handle 处理一条队列消息，无法构建的邮件直接丢弃，发送失败的邮件重新入队
func (w *Worker) Handle(ctx context.Context, delivery amqp.Delivery) {
	w.logger.Info("收到消息", slog.String("message", string(delivery.Body)))

	msg, err := w.Compose(delivery.Body)
	if err != nil {
		w.logger.Error("无法构建邮件", slog.String("error", err.Error()))
		_ = delivery.Nack(false, false)
		return
	}

	if err := w.sender.DialAndSendWithContext(ctx, msg); err != nil {
		w.logger.Error("邮件发送失败", slog.String("error", err.Error()))
		_ = delivery.Nack(false, true)
		return
	}

	_ = delivery.Ack(false)
}

// Run 持续消费消息，直到 ctx 被取消或通道被关闭
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-deliveries:
			if !ok {
				return
			}
			w.Handle(ctx, delivery)
		}
	}
}
