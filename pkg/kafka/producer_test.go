package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONRecord(t *testing.T) {
	payload := map[string]string{"article_id": "a1"}

	record, err := NewJSONRecord("article-events", "a1", payload, map[string]string{"event_type": "article.created"})
	require.NoError(t, err)

	assert.Equal(t, "article-events", record.Topic)
	assert.Equal(t, []byte("a1"), record.Key)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(record.Value, &decoded))
	assert.Equal(t, payload, decoded)

	headers := map[string]string{}
	for _, h := range record.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "application/json", headers["content-type"])
	assert.Equal(t, "article.created", headers["event_type"])
}

func TestNewJSONRecord_EmptyKey(t *testing.T) {
	record, err := NewJSONRecord("t", "", 1, nil)
	require.NoError(t, err)
	assert.Nil(t, record.Key)
}

func TestNewJSONRecord_Errors(t *testing.T) {
	_, err := NewJSONRecord("", "k", 1, nil)
	assert.Error(t, err)

	_, err = NewJSONRecord("t", "k", make(chan int), nil)
	assert.Error(t, err)
}

func TestNewProducer_NoBrokers(t *testing.T) {
	_, err := NewProducer(context.Background(), &ProducerConfig{})
	assert.Error(t, err)

	_, err = NewProducer(context.Background(), nil)
	assert.Error(t, err)
}

func TestProduceOnNilProducer(t *testing.T) {
	var p *Producer
	err := p.ProduceJSON(context.Background(), "t", "k", 1, nil)
	assert.ErrorIs(t, err, ErrProducerClosed)
	p.Close()
}
