package eventbus

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/taskdeck/taskdeck/pkg/events"
)

// WatermillEventBus routes domain events to the engine topic and rule
// outcomes to the outcome topic, keyed by task id so per-task ordering is
// preserved on partitioned transports.
type WatermillEventBus struct {
	publisher     message.Publisher
	subscriber    message.Subscriber
	subscriptions map[events.EventType]EventHandler
}

func NewWatermillEventBus(pub message.Publisher, sub message.Subscriber) EventBus {
	return &WatermillEventBus{
		publisher:     pub,
		subscriber:    sub,
		subscriptions: make(map[events.EventType]EventHandler),
	}
}

func (eb *WatermillEventBus) GenerateID() string {
	return watermill.NewULID()
}

func (eb *WatermillEventBus) Publish(ctx context.Context, key string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage("msg-"+eb.GenerateID(), payload)
	msg.Metadata.Set(events.EventMetadataKey, key)
	msg.Metadata.Set(events.EventTypeMetadataKey, string(event.GetType()))

	return eb.publisher.Publish(topicFor(event.GetType()), msg)
}

func topicFor(eventType events.EventType) string {
	if eventType == events.DomainEventType {
		return events.DomainTopic
	}

	return events.OutcomeTopic
}

// Subscribe consumes the domain event topic and dispatches to registered
// handlers. Unknown event types are nacked.
func (eb *WatermillEventBus) Subscribe(ctx context.Context) error {
	return eb.subscribeTopic(ctx, events.DomainTopic)
}

// SubscribeOutcomes consumes the outcome topic, for hosts that react to rule
// results.
func (eb *WatermillEventBus) SubscribeOutcomes(ctx context.Context) error {
	return eb.subscribeTopic(ctx, events.OutcomeTopic)
}

func (eb *WatermillEventBus) subscribeTopic(ctx context.Context, topic string) error {
	messages, err := eb.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			var event any

			eventType := events.EventType(msg.Metadata.Get(events.EventTypeMetadataKey))

			handler, exists := eb.subscriptions[eventType]
			if !exists {
				msg.Ack()

				continue
			}

			switch eventType {
			case events.DomainEventType:
				event = &events.DomainEvent{}
			case events.RuleMatchedEvent:
				event = &events.RuleMatched{}
			case events.RuleExecutedEvent:
				event = &events.RuleExecuted{}
			case events.RuleFailedEvent:
				event = &events.RuleFailed{}
			default:
				msg.Nack()

				continue
			}

			err := json.Unmarshal(msg.Payload, event)
			if err != nil {
				msg.Nack()

				continue
			}

			err = handler(ctx, event)
			if err != nil {
				msg.Nack()

				continue
			}

			msg.Ack()
		}
	}()

	return nil
}

func (eb *WatermillEventBus) Handle(eventType events.EventType, handler EventHandler) error {
	eb.subscriptions[eventType] = handler

	return nil
}

func (eb *WatermillEventBus) Close() error {
	err := eb.publisher.Close()
	if err != nil {
		return err
	}

	return eb.subscriber.Close()
}
