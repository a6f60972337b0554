package mailqueue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

type recordingChannel struct {
	exchange  string
	key       string
	mandatory bool
	published []amqp.Publishing
	err       error
	deadline  bool
}

func (c *recordingChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	_, c.deadline = ctx.Deadline()
	c.exchange = exchange
	c.key = key
	c.mandatory = mandatory
	c.published = append(c.published, msg)
	return c.err
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.RabbitMQ.PublishTimeout = 10
	return cfg
}

func TestPublish(t *testing.T) {
	ch := &recordingChannel{}
	publisher := NewPublisher(newTestConfig(), ch)

	err := publisher.Publish(context.Background(), domain.MailMessage{
		Type: domain.MailTypeResetPassword,
		To:   "marlene@example.com",
		Data: domain.ResetPasswordMailData{FullName: "Marlene Muster", OTP: "123456", Expiration: 5},
	})
	require.NoError(t, err)

	require.Equal(t, "", ch.exchange)
	require.Equal(t, QueueName, ch.key)
	require.True(t, ch.mandatory)
	require.True(t, ch.deadline)
	require.Len(t, ch.published, 1)
	require.Equal(t, "application/json", ch.published[0].ContentType)

	var decoded struct {
		Type string `json:"type"`
		To   string `json:"to"`
		Data struct {
			OTP string `json:"otp"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &decoded))
	require.Equal(t, domain.MailTypeResetPassword, decoded.Type)
	require.Equal(t, "marlene@example.com", decoded.To)
	require.Equal(t, "123456", decoded.Data.OTP)
}

func TestPublishReturnsChannelError(t *testing.T) {
	ch := &recordingChannel{err: errors.New("channel closed")}
	publisher := NewPublisher(newTestConfig(), ch)

	err := publisher.Publish(context.Background(), domain.MailMessage{Type: domain.MailTypeCreateUser, To: "a@example.com"})
	require.EqualError(t, err, "channel closed")
}

func TestPublishRejectsUnencodableData(t *testing.T) {
	ch := &recordingChannel{}
	publisher := NewPublisher(newTestConfig(), ch)

	err := publisher.Publish(context.Background(), domain.MailMessage{Type: "broken", To: "a@example.com", Data: make(chan int)})
	require.Error(t, err)
	require.Empty(t, ch.published)
}
