package notify

import (
	"context"
	"fmt"
	"time"

	apperrors "splitledger-backend/errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPNotifier publishes reminders to a durable direct exchange, routed to a
// queue of the same name as its binding key.
type AMQPNotifier struct {
	conn     *amqp.Connection
	channel  publisher
	closer   func() error
	exchange string
	queue    string
}

func NewAMQPNotifier(url, exchange, queue string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dialing AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	if err := declare(ch, exchange, queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declaring reminder topology: %w", err)
	}

	return &AMQPNotifier{
		conn:     conn,
		channel:  ch,
		closer:   ch.Close,
		exchange: exchange,
		queue:    queue,
	}, nil
}

func declare(ch *amqp.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declaring exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declaring queue: %w", err)
	}
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("binding queue: %w", err)
	}
	return nil
}

func (n *AMQPNotifier) NotifyDebtor(ctx context.Context, msg ReminderMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshaling reminder: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = n.channel.PublishWithContext(ctx, n.exchange, n.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.DebtorID + ":" + msg.GeneratedAt.UTC().Format(time.RFC3339),
		Timestamp:    msg.GeneratedAt,
		Body:         body,
	})
	if err != nil {
		return apperrors.ExternalServiceError("publishing reminder", err)
	}

	zap.L().Debug("Published debt reminder",
		zap.String("debtor_id", msg.DebtorID),
		zap.Int("debts", len(msg.Debts)),
		zap.String("exchange", n.exchange))
	return nil
}

func (n *AMQPNotifier) Close() error {
	if n.closer != nil {
		n.closer()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
