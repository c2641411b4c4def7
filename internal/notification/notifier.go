package notification

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/smilecare/practice-api/pkg/messaging"
)

// Publisher receives structured scheduling outcomes. Implementations
// decide presentation; the engine only hands over kind and payload.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// BrokerPublisher forwards outcomes to the messaging broker for any
// surrounding application that polls for notifications.
type BrokerPublisher struct {
	broker  messaging.Broker
	channel string
}

func NewBrokerPublisher(broker messaging.Broker, channel string) *BrokerPublisher {
	return &BrokerPublisher{broker: broker, channel: channel}
}

func (p *BrokerPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	return p.broker.Publish(ctx, p.channel, messaging.Message{
		Type:    eventType,
		Payload: payload,
	})
}

// Fanout delivers each outcome to every configured publisher. Failures
// are logged and do not stop delivery to the others.
type Fanout struct {
	publishers []Publisher
}

func NewFanout(publishers ...Publisher) *Fanout {
	return &Fanout{publishers: publishers}
}

func (f *Fanout) Publish(ctx context.Context, eventType string, payload interface{}) error {
	for _, p := range f.publishers {
		if err := p.Publish(ctx, eventType, payload); err != nil {
			log.Warn().Err(err).Str("event_type", eventType).Msg("notification delivery failed")
		}
	}
	return nil
}
