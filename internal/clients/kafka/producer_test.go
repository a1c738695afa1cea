package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Shopify/sarama"
	"github.com/Shopify/sarama/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"max.ks1230/expenses-api/internal/entity/expense"
)

func Test_Publish_ShouldSendJSONKeyedByOwner(t *testing.T) {
	mock := mocks.NewSyncProducer(t, newSaramaConfig())
	owner := uuid.New()
	event := expense.NewEvent(expense.EventDeleted, owner, uuid.New(), nil,
		time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, "expense-events", msg.Topic)

		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, owner.String(), string(key))

		raw, err := msg.Value.Encode()
		require.NoError(t, err)
		var decoded expense.Event
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Equal(t, event, decoded)
		return nil
	})

	p := newProducer(mock, "expense-events")
	assert.NoError(t, p.Publish(context.Background(), event))
	assert.NoError(t, p.Close())
}

func Test_Publish_ShouldReturnBrokerError(t *testing.T) {
	mock := mocks.NewSyncProducer(t, newSaramaConfig())
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := newProducer(mock, "expense-events")
	err := p.Publish(context.Background(), expense.NewEvent(expense.EventCreated, uuid.New(), uuid.New(), nil, time.Now()))
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	assert.NoError(t, p.Close())
}
