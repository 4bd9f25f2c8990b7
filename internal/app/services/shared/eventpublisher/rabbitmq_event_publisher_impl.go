package eventpublisher

import (
	"context"
	"fmt"
	"qris-payment-service/internal/app/contracts"
	"qris-payment-service/internal/app/models"
	"qris-payment-service/internal/app/services/shared/jwtmanager"
	"qris-payment-service/internal/pkg/constvars"
	"qris-payment-service/internal/pkg/exceptions"
	"sync"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const EventTypePaymentStatusChanged = "payment.status_changed"

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitMQPublisher delivers payment status events to a durable queue with
// publisher confirms. Each message carries a signed X-Event-Token header.
type RabbitMQPublisher struct {
	ch       amqpChannel
	confirms <-chan amqp.Confirmation
	queue    string
	tokens   *jwtmanager.JWTManager
	log      *zap.Logger
	mu       sync.Mutex
}

// NewRabbitMQPublisher opens a channel, declares the durable queue and enables
// confirms. tokens may be nil, in which case messages are unsigned.
func NewRabbitMQPublisher(conn *amqp.Connection, queue string, tokens *jwtmanager.JWTManager, log *zap.Logger) (*RabbitMQPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
	if err != nil {
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		return nil, err
	}

	return newRabbitMQPublisher(ch, ch.NotifyPublish(make(chan amqp.Confirmation, 1)), queue, tokens, log), nil
}

func newRabbitMQPublisher(ch amqpChannel, confirms <-chan amqp.Confirmation, queue string, tokens *jwtmanager.JWTManager, log *zap.Logger) *RabbitMQPublisher {
	return &RabbitMQPublisher{
		ch:       ch,
		confirms: confirms,
		queue:    queue,
		tokens:   tokens,
		log:      log,
	}
}

func (p *RabbitMQPublisher) PublishStatusChanged(ctx context.Context, event *models.PaymentStatusChangedEvent) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	p.log.Info("RabbitMQPublisher.PublishStatusChanged called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMerchantOrderIDKey, event.MerchantOrderID),
		zap.String(constvars.LoggingPaymentStatusKey, string(event.Status)),
		zap.String(constvars.LoggingQueueNameKey, p.queue),
	)

	body, err := json.Marshal(event)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	headers := amqp.Table{}
	if p.tokens != nil {
		token, err := p.tokens.CreateToken(ctx, &jwtmanager.CreateTokenInput{
			Subject: event.MerchantOrderID,
			Claims: map[string]interface{}{
				"event_id": event.EventID,
				"status":   string(event.Status),
			},
		})
		if err != nil {
			return exceptions.ErrEventTokenSign(err)
		}
		headers[constvars.HeaderXEventToken] = token.Token
	}

	msg := amqp.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Type:         EventTypePaymentStatusChanged,
		Timestamp:    event.OccurredAt,
		Headers:      headers,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return exceptions.ErrRabbitMQPublishMessage(err, p.queue)
	}

	select {
	case confirmed, ok := <-p.confirms:
		if !ok {
			return exceptions.ErrRabbitMQPublishMessage(fmt.Errorf("confirm channel closed"), p.queue)
		}
		if !confirmed.Ack {
			return exceptions.ErrRabbitMQPublishMessage(fmt.Errorf("message not confirmed"), p.queue)
		}
	case <-ctx.Done():
		return exceptions.ErrRabbitMQPublishMessage(ctx.Err(), p.queue)
	}
	return nil
}

type noopPublisher struct {
	log *zap.Logger
}

// NewNoopPublisher is used when no broker is configured.
func NewNoopPublisher(log *zap.Logger) contracts.PaymentEventPublisher {
	return &noopPublisher{log: log}
}

func (p *noopPublisher) PublishStatusChanged(ctx context.Context, event *models.PaymentStatusChangedEvent) error {
	p.log.Debug("noopPublisher.PublishStatusChanged discarded event",
		zap.String(constvars.LoggingMerchantOrderIDKey, event.MerchantOrderID),
		zap.String(constvars.LoggingPaymentStatusKey, string(event.Status)),
	)
	return nil
}

var _ contracts.PaymentEventPublisher = (*RabbitMQPublisher)(nil)
