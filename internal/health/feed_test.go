package health

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/girguy/concaf/internal/models"
)

func receiveRunID(t *testing.T, c *client) uuid.UUID {
	t.Helper()
	select {
	case raw, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var msg struct {
			Payload PredictionsResponse `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg.Payload.RunID
	case <-time.After(5 * time.Second):
		t.Fatal("no feed message received")
		return uuid.Nil
	}
}

// A client registering while a batch is still queued must see it once,
// whichever of the two the hub handles first.
func TestHubDeliversQueuedBatchOnce(t *testing.T) {
	for i := 0; i < 20; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		hub := NewHub(quietLogger())

		first := sampleBatch()
		hub.Publish(first)

		c := &client{hub: hub, send: make(chan []byte, sendBufferSize)}
		go func() { hub.register <- c }()
		go hub.Run(ctx)

		assert.Equal(t, first.RunID, receiveRunID(t, c))

		second := &models.BatchResult{RunID: uuid.New()}
		hub.Publish(second)
		assert.Equal(t, second.RunID, receiveRunID(t, c), "iteration %d", i)

		cancel()
		<-hub.done
	}
}

func TestHubReplaysLastBatchToNewClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(quietLogger())
	go hub.Run(ctx)

	early := &client{hub: hub, send: make(chan []byte, sendBufferSize)}
	hub.register <- early

	batch := sampleBatch()
	hub.Publish(batch)
	assert.Equal(t, batch.RunID, receiveRunID(t, early))

	late := &client{hub: hub, send: make(chan []byte, sendBufferSize)}
	hub.register <- late
	assert.Equal(t, batch.RunID, receiveRunID(t, late))
}
