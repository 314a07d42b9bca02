package rabbit

import (
	"context"
	"encoding/json"

	"catalog-service/internal/service"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type StockReserver interface {
	ReserveStock(ctx context.Context, orderID string, items []service.QuantityChange) (int, error)
}

type PlaceOrderConsumer struct {
	Service StockReserver
	log     zerolog.Logger
}

func NewPlaceOrderConsumer(s StockReserver, log zerolog.Logger) *PlaceOrderConsumer {
	return &PlaceOrderConsumer{Service: s, log: log.With().Str("consumer", "place_order").Logger()}
}

// Mensaje publicado por el servicio de órdenes en el exchange order_placed.
type PlacedOrderMessage struct {
	CorrelationID string `json:"correlation_id"`
	Exchange      string `json:"exchange"`
	RoutingKey    string `json:"routing_key"`
	Message       struct {
		OrderID  string `json:"orderId"`
		CartID   string `json:"cartId"`
		UserID   string `json:"userId"`
		Articles []struct {
			ArticleID string `json:"articleId"`
			Quantity  int    `json:"quantity"`
		} `json:"articles"`
	} `json:"message"`
}

func (c *PlaceOrderConsumer) Handle(ctx context.Context, msg []byte) error {
	var event PlacedOrderMessage
	if err := json.Unmarshal(msg, &event); err != nil {
		c.log.Error().Err(err).Msg("could not parse place_order message")
		return errors.Wrap(err, "parsing place_order message")
	}

	items := make([]service.QuantityChange, 0, len(event.Message.Articles))
	for _, a := range event.Message.Articles {
		items = append(items, service.QuantityChange{ProductID: a.ArticleID, Qty: a.Quantity})
	}

	reserved, err := c.Service.ReserveStock(ctx, event.Message.OrderID, items)
	if err != nil {
		c.log.Error().Err(err).Str("order_id", event.Message.OrderID).Msg("could not reserve stock")
		return err
	}

	c.log.Info().
		Str("order_id", event.Message.OrderID).
		Str("correlation_id", event.CorrelationID).
		Int("articles", len(items)).
		Int("reserved", reserved).
		Msg("stock reserved for placed order")
	return nil
}
