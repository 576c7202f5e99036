package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/kart-io/publishhub/pkg/logger"
	"github.com/kart-io/publishhub/pkg/utils/idgen"
)

// DefaultExchange is the topic exchange settled results are announced on.
const DefaultExchange = "publishhub.results"

// AMQPEmitter announces settled records on a RabbitMQ topic exchange.
// Routing keys follow "publish.result.<status>" so consumers can bind to
// failures only.
type AMQPEmitter struct {
	conn     *amqp091.Connection
	exchange string
	logger   logger.Logger
}

// NewAMQPEmitter connects to the broker and declares the topic exchange.
func NewAMQPEmitter(url, exchange string, log logger.Logger) (*AMQPEmitter, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if log == nil {
		log = logger.Discard
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQPEmitter{conn: conn, exchange: exchange, logger: log}, nil
}

// EmitResult publishes the settled record as a persistent JSON message.
func (e *AMQPEmitter) EmitResult(ctx context.Context, record *Record) error {
	ch, err := e.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	key := fmt.Sprintf("publish.result.%s", record.Status)
	err = ch.PublishWithContext(
		ctx, e.exchange, key, false, false,
		amqp091.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp091.Persistent,
			MessageId:     idgen.MessageID(),
			CorrelationId: record.RequestID,
			Timestamp:     time.Now(),
			Body:          body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish result event: %w", err)
	}

	e.logger.Debug("result event published",
		"record_id", record.ID,
		"routing_key", key,
		"exchange", e.exchange)
	return nil
}

// Close closes the broker connection.
func (e *AMQPEmitter) Close() error {
	return e.conn.Close()
}
