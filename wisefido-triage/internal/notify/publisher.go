package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	rediscommon "owlback/owl-common/redis"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"
)

// 事件类型
const (
	EventPatientAdded   = "patient.added"
	EventPatientUpdated = "patient.updated"
	EventPatientDeleted = "patient.deleted"
)

// Event 分诊记录变更事件（只含 ID 与严重度，不含姓名）
type Event struct {
	Type         string    `json:"event_type"`
	InvocationID string    `json:"invocation_id"`
	PatientID    string    `json:"patient_id"`
	Severity     string    `json:"severity,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher 事件发布
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop 不发布任何事件
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// RedisStreamPublisher 通过 XADD 写入 Redis Streams
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewRedisStreamPublisher(client *redis.Client, stream string, maxLen int64) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, ev Event) error {
	if _, err := rediscommon.PublishJSONToStream(ctx, p.client, p.stream, p.maxLen, ev); err != nil {
		return fmt.Errorf("publish %s to stream %s: %w", ev.Type, p.stream, err)
	}
	return nil
}

// mqttClient owl-common/mqtt.Client 的发布能力
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTPublisher 以 JSON 发布到 MQTT 主题
type MQTTPublisher struct {
	client mqttClient
	topic  string
	qos    byte
}

func NewMQTTPublisher(client mqttClient, topic string, qos byte) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic, qos: qos}
}

func (p *MQTTPublisher) Publish(_ context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.client.Publish(p.topic, p.qos, false, payload)
}

// Multi 并发发布到所有 Publisher，返回第一个错误
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev Event) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, p := range m {
		p := p
		g.Go(func() error { return p.Publish(ctx, ev) })
	}
	return g.Wait()
}
