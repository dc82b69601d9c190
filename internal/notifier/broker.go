package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"job-portal/internal/model"

	amqp "github.com/rabbitmq/amqp091-go"
)

// BrokerConfig RabbitMQ 镜像配置，URL 为空时不启用。
type BrokerConfig struct {
	URL      string `yaml:"url" json:"url"`
	Exchange string `yaml:"exchange" json:"exchange"`
}

// Publisher 抽象 amqp 通道的发布能力，便于测试替换。
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// BrokerNotifier 将职位发布事件镜像到 fanout 交换机，供其他进程消费。
type BrokerNotifier struct {
	pub      Publisher
	exchange string
	closers  []func() error
}

// NewBrokerNotifier 基于已有通道创建通知器。
func NewBrokerNotifier(pub Publisher, exchange string) *BrokerNotifier {
	if exchange == "" {
		exchange = "jobs.posted"
	}
	return &BrokerNotifier{pub: pub, exchange: exchange}
}

// DialBroker 连接 RabbitMQ 并声明持久化的 fanout 交换机。
func DialBroker(cfg BrokerConfig) (*BrokerNotifier, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	n := NewBrokerNotifier(ch, cfg.Exchange)
	if err := ch.ExchangeDeclare(n.exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	n.closers = []func() error{ch.Close, conn.Close}
	return n, nil
}

// Notify 每个职位发布一条 JSON 消息。
func (n *BrokerNotifier) Notify(ctx context.Context, jobs []model.JobListing) error {
	for _, job := range jobs {
		body, err := json.Marshal(Event{Event: EventJobPosted, Data: job})
		if err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
		msg := amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    job.ID,
			Type:         EventJobPosted,
			Timestamp:    time.Now(),
			Body:         body,
		}
		if err := n.pub.PublishWithContext(ctx, n.exchange, "", false, false, msg); err != nil {
			return fmt.Errorf("publish job %s: %w", job.ID, err)
		}
	}
	return nil
}

// Close 关闭通道与连接。
func (n *BrokerNotifier) Close() error {
	var first error
	for _, c := range n.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	n.closers = nil
	return first
}
