package rabbit

import (
	"context"
	"encoding/json"
	"time"

	"catalog-service/internal/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"
)

const CatalogExchange = "catalog_events"

// Mismo sobre que usa el resto del marketplace (ver PlacedOrderMessage).
type catalogMessage struct {
	CorrelationID string        `json:"correlation_id"`
	Exchange      string        `json:"exchange"`
	RoutingKey    string        `json:"routing_key"`
	Message       service.Event `json:"message"`
}

type channelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

type Publisher struct {
	ch channelPublisher
}

// NewPublisher declara el exchange fanout catalog_events.
func NewPublisher(ch *amqp091.Channel) (*Publisher, error) {
	err := ch.ExchangeDeclare(
		CatalogExchange,
		"fanout",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, errors.Wrap(err, "declaring catalog_events exchange")
	}
	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Publish(ctx context.Context, e service.Event) error {
	body, err := json.Marshal(catalogMessage{
		CorrelationID: uuid.NewString(),
		Exchange:      CatalogExchange,
		Message:       e,
	})
	if err != nil {
		return errors.Wrap(err, "encoding catalog event")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.ch.PublishWithContext(ctx, CatalogExchange, "", false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         e.Name,
		Body:         body,
	})
	return errors.Wrapf(err, "publishing %s", e.Name)
}
