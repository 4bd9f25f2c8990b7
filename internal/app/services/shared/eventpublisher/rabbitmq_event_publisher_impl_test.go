package eventpublisher

import (
	"context"
	"errors"
	"qris-payment-service/internal/app/config"
	"qris-payment-service/internal/app/models"
	"qris-payment-service/internal/app/services/shared/jwtmanager"
	"testing"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChannel struct {
	published []amqp.Publishing
	keys      []string
	confirms  chan amqp.Confirmation
	ack       bool
	err       error
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	f.keys = append(f.keys, key)
	f.confirms <- amqp.Confirmation{DeliveryTag: uint64(len(f.published)), Ack: f.ack}
	return nil
}

func newFakeChannel(ack bool) *fakeChannel {
	return &fakeChannel{confirms: make(chan amqp.Confirmation, 1), ack: ack}
}

func testEvent() *models.PaymentStatusChangedEvent {
	return &models.PaymentStatusChangedEvent{
		EventID:         "evt-1",
		MerchantOrderID: "ORDER-1",
		Reference:       "REF-1",
		Amount:          10000,
		Status:          models.PaymentStatusSettled,
		PreviousStatus:  models.PaymentStatusPending,
		Source:          models.TransitionSourceCallback,
		OccurredAt:      time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestPublishStatusChangedSignsAndPersists(t *testing.T) {
	tokens, err := jwtmanager.NewJWTManager(&config.InternalConfig{Event: config.AppEvent{SigningSecret: "s3cret"}}, zap.NewNop())
	require.NoError(t, err)
	ch := newFakeChannel(true)
	publisher := newRabbitMQPublisher(ch, ch.confirms, "payment_status_events", tokens, zap.NewNop())

	require.NoError(t, publisher.PublishStatusChanged(context.Background(), testEvent()))

	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, "payment_status_events", ch.keys[0])
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "evt-1", msg.MessageId)
	assert.Equal(t, EventTypePaymentStatusChanged, msg.Type)

	var decoded models.PaymentStatusChangedEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, models.PaymentStatusSettled, decoded.Status)

	token, ok := msg.Headers["X-Event-Token"].(string)
	require.True(t, ok)
	verified, err := tokens.VerifyToken(context.Background(), &jwtmanager.VerifyTokenInput{Token: token})
	require.NoError(t, err)
	assert.True(t, verified.Valid)
	assert.Equal(t, "ORDER-1", verified.Claims["sub"])
}

func TestPublishStatusChangedNack(t *testing.T) {
	ch := newFakeChannel(false)
	publisher := newRabbitMQPublisher(ch, ch.confirms, "q", nil, zap.NewNop())

	assert.Error(t, publisher.PublishStatusChanged(context.Background(), testEvent()))
}

func TestPublishStatusChangedPublishError(t *testing.T) {
	ch := newFakeChannel(true)
	ch.err = errors.New("channel closed")
	publisher := newRabbitMQPublisher(ch, ch.confirms, "q", nil, zap.NewNop())

	assert.Error(t, publisher.PublishStatusChanged(context.Background(), testEvent()))
	assert.Empty(t, ch.published)
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NewNoopPublisher(zap.NewNop()).PublishStatusChanged(context.Background(), testEvent()))
}
