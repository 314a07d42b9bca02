// setup.go
package rabbit

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	ordersQueue    = "catalog_service_orders"
	placedExchange = "order_placed"
)

// SetupConsumers se suscribe al exchange order_placed y procesa los mensajes
// hasta que se cierre el canal o se cancele ctx.
func SetupConsumers(ctx context.Context, ch *amqp091.Channel, svc StockReserver, log zerolog.Logger) error {
	consumer := NewPlaceOrderConsumer(svc, log)

	// 1. Declarar la queue
	q, err := ch.QueueDeclare(
		ordersQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "declaring queue")
	}

	// 2. Bindear al exchange fanout
	err = ch.QueueBind(
		q.Name,
		"", // fanout ignora routing key
		placedExchange,
		false,
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "binding queue to order_placed")
	}

	// 3. Consumir con ack manual: si falla se reencola una sola vez.
	msgs, err := ch.Consume(
		q.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "consuming queue")
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					log.Warn().Msg("order_placed delivery channel closed")
					return
				}
				settle(ctx, consumer, m, log)
			}
		}
	}()

	log.Info().Str("exchange", placedExchange).Str("queue", q.Name).Msg("subscribed to order_placed (fanout)")
	return nil
}

// settle procesa una entrega y la confirma. Si falla se reencola solo la
// primera vez; una reentrega que vuelve a fallar se descarta.
func settle(ctx context.Context, consumer *PlaceOrderConsumer, m amqp091.Delivery, log zerolog.Logger) {
	if err := consumer.Handle(ctx, m.Body); err != nil {
		requeue := !m.Redelivered
		if err := m.Nack(false, requeue); err != nil {
			log.Error().Err(err).Msg("could not nack order_placed delivery")
			return
		}
		if !requeue {
			log.Warn().Uint64("delivery_tag", m.DeliveryTag).Msg("dropping order_placed message after redelivery")
		}
		return
	}
	if err := m.Ack(false); err != nil {
		log.Error().Err(err).Msg("could not ack order_placed delivery")
	}
}
