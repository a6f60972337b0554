package mailworker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

type fakeSender struct {
	sent []*mail.Msg
	err  error
}

func (f *fakeSender) DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, messages...)
	return nil
}

type ackRecord struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *ackRecord) Ack(tag uint64, multiple bool) error {
	a.acked = true
	return nil
}

func (a *ackRecord) Nack(tag uint64, multiple bool, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func (a *ackRecord) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func newTestWorker(t *testing.T, sender Sender) *Worker {
	t.Helper()

	worker, err := NewWorker(sender, "noreply@example.com", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return worker
}

func encode(t *testing.T, message domain.MailMessage) []byte {
	t.Helper()

	body, err := json.Marshal(message)
	require.NoError(t, err)
	return body
}

func render(t *testing.T, msg *mail.Msg) string {
	t.Helper()

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestEveryMailTypeHasATemplate(t *testing.T) {
	worker := newTestWorker(t, &fakeSender{})

	for mailType, kind := range mailKinds {
		require.NotNil(t, worker.templates.Lookup(kind.template), mailType)
	}
}

func TestComposeApplicationMail(t *testing.T) {
	worker := newTestWorker(t, &fakeSender{})

	msg, err := worker.Compose(encode(t, domain.MailMessage{
		Type: domain.MailTypeApplicationAllowed,
		To:   "marlene@example.com",
		Data: domain.ApplicationMailData{
			RecipientName: "Marlene Muster",
			PersonName:    "Marlene Muster",
			ApplicationID: 42,
			StartDate:     "2024-05-06",
			EndDate:       "2024-05-08",
		},
	}))
	require.NoError(t, err)

	recipients, err := msg.GetRecipients()
	require.NoError(t, err)
	require.Equal(t, []string{"marlene@example.com"}, recipients)
	require.Equal(t, []string{"ECNC 假勤系统 - 请假申请已批准"}, msg.GetGenHeader(mail.HeaderSubject))

	body := render(t, msg)
	require.Contains(t, body, "2024-05-06")
}

func TestComposeRejectsUnknownType(t *testing.T) {
	worker := newTestWorker(t, &fakeSender{})

	_, err := worker.Compose(encode(t, domain.MailMessage{Type: "unknown", To: "a@example.com"}))
	require.ErrorIs(t, err, ErrUnsupportedMailType)
}

func TestComposeRejectsInvalidJSON(t *testing.T) {
	worker := newTestWorker(t, &fakeSender{})

	_, err := worker.Compose([]byte("{"))
	require.Error(t, err)
}

func TestHandleAcksSentMail(t *testing.T) {
	sender := &fakeSender{}
	worker := newTestWorker(t, sender)
	ack := &ackRecord{}

	worker.Handle(context.Background(), amqp.Delivery{
		Acknowledger: ack,
		DeliveryTag:  1,
		Body: encode(t, domain.MailMessage{
			Type: domain.MailTypeResetPassword,
			To:   "marlene@example.com",
			Data: domain.ResetPasswordMailData{FullName: "Marlene Muster", OTP: "123456", Expiration: 5},
		}),
	})

	require.True(t, ack.acked)
	require.False(t, ack.nacked)
	require.Len(t, sender.sent, 1)
}

func TestHandleDropsUncomposableMail(t *testing.T) {
	sender := &fakeSender{}
	worker := newTestWorker(t, sender)
	ack := &ackRecord{}

	worker.Handle(context.Background(), amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte("not json")})

	require.True(t, ack.nacked)
	require.False(t, ack.requeue)
	require.Empty(t, sender.sent)
}

func TestHandleRequeuesOnSendFailure(t *testing.T) {
	worker := newTestWorker(t, &fakeSender{err: errors.New("smtp unavailable")})
	ack := &ackRecord{}

	worker.Handle(context.Background(), amqp.Delivery{
		Acknowledger: ack,
		DeliveryTag:  1,
		Body:         encode(t, domain.MailMessage{Type: domain.MailTypeCreateUser, To: "a@example.com", Data: domain.CreateUserMailData{Username: "a"}}),
	})

	require.True(t, ack.nacked)
	require.True(t, ack.requeue)
}

func TestRunStopsWhenChannelCloses(t *testing.T) {
	sender := &fakeSender{}
	worker := newTestWorker(t, sender)
	deliveries := make(chan amqp.Delivery, 1)
	ack := &ackRecord{}

	deliveries <- amqp.Delivery{
		Acknowledger: ack,
		DeliveryTag:  1,
		Body:         encode(t, domain.MailMessage{Type: domain.MailTypeCreateUser, To: "a@example.com", Data: domain.CreateUserMailData{Username: "a"}}),
	}
	close(deliveries)

	worker.Run(context.Background(), deliveries)

	require.True(t, ack.acked)
	require.Len(t, sender.sent, 1)
}
