package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"maintenance-qa-be/pkg/events"
	"maintenance-qa-be/pkg/nats"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process feedback topic and forwards
// each completed-request record to NATS when a publisher is wired.
// Without NATS the records are consumed and logged only.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	publisher *nats.Publisher // nil when NATS is not configured
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	publisher *nats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		publisher: publisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
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
	var payload map[string]interface{}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal feedback record: %v", err)
		msg.Ack() // malformed records are never retriable
		return
	}

	eventType := msg.Metadata.Get("event_type")
	if eventType == "" {
		eventType = events.TypeAnswerCompleted
	}

	if cs.publisher == nil {
		log.Printf("[INFO] Feedback record %s consumed (NATS disabled)", eventType)
		msg.Ack()
		return
	}

	event := events.BaseEvent{
		Type:       eventType,
		Data:       payload,
		OccurredAt: time.Now(),
	}
	if err := cs.publisher.Publish(ctx, event); err != nil {
		log.Printf("[ERROR] Failed to forward feedback record to NATS: %v", err)
		msg.Nack()
		return
	}

	msg.Ack()
}
