package service

import (
	"context"
	"encoding/json"

	"author-be/internal/pkg/logger"
	"author-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// RoomSender delivers an encoded message to every client of a repository.
type RoomSender interface {
	SendToRepository(repositoryId int64, message []byte)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// realtimeToContent maps realtime events onto the durable content stream.
var realtimeToContent = map[string]string{
	EventActivityCreate:    events.ActivityCreated,
	EventActivityUpdate:    events.ActivityUpdated,
	EventActivityDelete:    events.ActivityDeleted,
	EventElementCreate:     events.ElementCreated,
	EventElementUpdate:     events.ElementUpdated,
	EventElementDelete:     events.ElementDeleted,
	EventElementBulkUpdate: events.ElementBulkUpdated,
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	rooms      RoomSender
	events     events.Publisher
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	rooms RoomSender,
	eventPublisher events.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		rooms:      rooms,
		events:     eventPublisher,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var rm RealtimeMessage
	if err := json.Unmarshal(msg.Payload, &rm); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal realtime message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		// Ack invalid messages to prevent infinite retry
		msg.Ack()
		return
	}

	if cs.rooms != nil {
		frame, err := json.Marshal(map[string]interface{}{
			"type": rm.Event,
			"data": rm.Payload,
		})
		if err == nil {
			cs.rooms.SendToRepository(rm.RepositoryId, frame)
		}
	}

	if cs.events != nil {
		if eventType, ok := realtimeToContent[rm.Event]; ok {
			data := map[string]interface{}{"repositoryId": rm.RepositoryId}
			var body interface{}
			if err := json.Unmarshal(rm.Payload, &body); err == nil {
				data["entity"] = body
			}
			event := events.BaseEvent{Type: eventType, Data: data, OccurredAt: rm.OccurredAt}
			if err := cs.events.Publish(ctx, event); err != nil {
				cs.logger.Warn("ConsumerService", "Failed to forward content event", map[string]interface{}{
					"event": eventType,
					"error": err.Error(),
				})
			}
		}
	}

	msg.Ack()
}
