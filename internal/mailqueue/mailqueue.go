package mailqueue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

const QueueName = "email_queue"

// Channel 是 *amqp.Channel 中发布消息所需的部分
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Publisher struct {
	channel Channel
	timeout time.Duration
}

func NewPublisher(cfg *config.Config, ch Channel) *Publisher {
	return &Publisher{
		channel: ch,
		timeout: time.Duration(cfg.RabbitMQ.PublishTimeout) * time.Second,
	}
}

// Publish 序列化邮件并发送到邮件队列中
func (p *Publisher) Publish(ctx context.Context, msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.channel.PublishWithContext(
		ctx,
		"",
		QueueName,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// DeclareQueue 声明持久化的邮件队列，发布方和消费方使用相同的参数
func DeclareQueue(ch *amqp.Channel) (amqp.Queue, error) {
	return ch.QueueDeclare(
		QueueName,
		true,  // 持久化
		false, // 没有消费者时不自动删除
		false, // 非独占
		false, // 等待 RabbitMQ 确认
		nil,
	)
}
