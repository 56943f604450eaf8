package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelGenerationEvents = "generation_events"
)

// GenerationEvent 生成状态事件，推给在线的 studio 页面
type GenerationEvent struct {
	Type         string `json:"type"`
	UserID       int64  `json:"user_id"`
	GenerationID int64  `json:"generation_id"`
	Status       string `json:"status"`
	ImageURL     string `json:"image_url,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishGeneration 发布生成事件
func (p *Publisher) PublishGeneration(ctx context.Context, evt *GenerationEvent) error {
	evt.Type = "generation_update"

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal generation event: %w", err)
	}

	return p.client.Publish(ctx, ChannelGenerationEvents, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅生成事件，阻塞直到 ctx 取消
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*GenerationEvent)) error {
	pubsub := s.client.Subscribe(ctx, ChannelGenerationEvents)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var evt GenerationEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				continue // 忽略解析错误
			}

			handler(&evt)
		}
	}
}
