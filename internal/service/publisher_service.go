package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// RealtimeMessage is the payload carried on the in-process realtime topic.
type RealtimeMessage struct {
	RepositoryId int64           `json:"repositoryId"`
	Event        string          `json:"event"`
	Payload      json.RawMessage `json:"payload"`
	OccurredAt   time.Time       `json:"occurredAt"`
}

type IPublisherService interface {
	IBroadcaster
	Publish(ctx context.Context, payload []byte) error
}

type publisherService struct {
	topicName string
	publisher message.Publisher
}

func NewPublisherService(topicName string, publisher message.Publisher) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (ps *publisherService) Publish(ctx context.Context, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return ps.publisher.Publish(ps.topicName, msg)
}

// Broadcast hands a committed change to the realtime topic. Delivery to
// clients happens in the consumer.
func (ps *publisherService) Broadcast(ctx context.Context, repositoryId int64, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg, err := json.Marshal(RealtimeMessage{
		RepositoryId: repositoryId,
		Event:        event,
		Payload:      data,
		OccurredAt:   time.Now(),
	})
	if err != nil {
		return err
	}
	return ps.Publish(ctx, msg)
}
