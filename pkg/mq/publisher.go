package mq

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/wyfcoding/nexoshop/pkg/logger"
)

// Publisher 领域事件发布器，各上下文的 EventPublisher 接口与之同形
type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
}

// KafkaPublisher 将事件写入 Kafka
type KafkaPublisher struct {
	producer *KafkaProducer
}

// NewKafkaPublisher 创建 Kafka 事件发布器
func NewKafkaPublisher(producer *KafkaProducer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

// Publish 发布事件
func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	return p.producer.SendMessage(ctx, topic, key, event)
}

// LogPublisher 未启用 Kafka 时把事件写入日志
type LogPublisher struct{}

// Publish 发布事件
func (LogPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	logger.Info(ctx, "domain event", "topic", topic, "key", key, "payload", string(payload))
	return nil
}

// Message 内存发布器记录的消息
type Message struct {
	Topic string
	Key   string
	Event any
}

// MemoryPublisher 记录发布过的事件，供测试断言
type MemoryPublisher struct {
	mu       sync.Mutex
	messages []Message
}

// Publish 发布事件
func (p *MemoryPublisher) Publish(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, Message{Topic: topic, Key: key, Event: event})
	return nil
}

// Topics 返回已发布事件的 topic 列表
func (p *MemoryPublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.messages))
	for _, m := range p.messages {
		out = append(out, m.Topic)
	}
	return out
}

// Messages 返回已发布事件
func (p *MemoryPublisher) Messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Message(nil), p.messages...)
}
