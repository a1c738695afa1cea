package amqp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"max.ks1230/expenses-api/internal/entity/expense"
)

type recordingChannel struct {
	exchange, key string
	msg           amqp091.Publishing
	err           error
	closed        bool
}

func (c *recordingChannel) PublishWithContext(ctx context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	c.exchange, c.key, c.msg = exchange, key, msg
	return c.err
}

func (c *recordingChannel) Close() error {
	c.closed = true
	return nil
}

func Test_Publish_ShouldSendPersistentJSON(t *testing.T) {
	ch := &recordingChannel{}
	p := &Publisher{channel: ch, exchange: "expenses", queue: "expense_events"}

	amount := 12.5
	rec := &expense.Record{ID: uuid.New(), UserID: uuid.New(), Amount: amount, Category: expense.Food}
	event := expense.NewEvent(expense.EventCreated, rec.UserID, rec.ID, rec, time.Now())

	require.NoError(t, p.Publish(context.Background(), event))

	assert.Equal(t, "expenses", ch.exchange)
	assert.Equal(t, "expense_events", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp091.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, string(expense.EventCreated), ch.msg.Type)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, "expense.created", decoded["type"])
	assert.Equal(t, rec.ID.String(), decoded["expense_id"])

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func Test_Publish_ShouldWrapChannelError(t *testing.T) {
	ch := &recordingChannel{err: amqp091.ErrClosed}
	p := &Publisher{channel: ch, exchange: "expenses", queue: "expense_events"}

	err := p.Publish(context.Background(), expense.NewEvent(expense.EventDeleted, uuid.New(), uuid.New(), nil, time.Now()))
	assert.ErrorIs(t, err, amqp091.ErrClosed)
}
