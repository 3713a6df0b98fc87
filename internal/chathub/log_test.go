package chathub_test

import (
	"fmt"
	"testing"

	"pairlink/backend/internal/chathub"
	"pairlink/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendTextRejectsEmpty(t *testing.T) {
	log := chathub.NewMessageService(newMemStorage())

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := log.AppendText("user_A", "user_B", text)
		assert.ErrorIs(t, err, chathub.ErrEmptyMessage)
	}

	history, err := log.History("user_A", "user_B")
	require.NoError(t, err)
	assert.Empty(t, history, "rejected messages must not be recorded")
}

func TestHistoryOrderedBySequence(t *testing.T) {
	log := chathub.NewMessageService(newMemStorage())

	for i := 1; i <= 5; i++ {
		// Alternate direction; both directions land in the same room log.
		sender, receiver := "user_A", "user_B"
		if i%2 == 0 {
			sender, receiver = receiver, sender
		}
		msg, err := log.AppendText(sender, receiver, fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
		assert.Equal(t, uint64(i), msg.Sequence)
	}

	history, err := log.History("user_B", "user_A")
	require.NoError(t, err)
	require.Len(t, history, 5)
	for i, msg := range history {
		assert.Equal(t, uint64(i+1), msg.Sequence)
		assert.Equal(t, fmt.Sprintf("msg %d", i+1), msg.Content)
	}
}

func TestSequenceSeedsFromStorage(t *testing.T) {
	store := newMemStorage()
	room := models.RoomID("user_A", "user_B")
	require.NoError(t, store.SaveMessage(&models.Message{
		RoomID:     room,
		SenderID:   "user_A",
		ReceiverID: "user_B",
		Type:       models.MessageText,
		Content:    "old",
		Sequence:   7,
	}))

	log := chathub.NewMessageService(store)
	msg, err := log.AppendText("user_B", "user_A", "new")
	require.NoError(t, err)
	assert.Equal(t, uint64(8), msg.Sequence, "counter must continue after restart")
}

func TestPairsSequenceIndependently(t *testing.T) {
	log := chathub.NewMessageService(newMemStorage())

	first, err := log.AppendText("user_A", "user_B", "hi")
	require.NoError(t, err)
	other, err := log.AppendText("user_A", "user_C", "hey")
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first.Sequence)
	assert.Equal(t, uint64(1), other.Sequence, "each pair has its own counter")
	assert.NotEqual(t, first.RoomID, other.RoomID)
}

func TestAppendMediaRecordsReference(t *testing.T) {
	log := chathub.NewMessageService(newMemStorage())

	msg, err := log.AppendMedia("user_A", "user_B", "/static/uploads/x.png", models.MessageImage)
	require.NoError(t, err)
	assert.Equal(t, models.MessageImage, msg.Type)
	assert.Equal(t, "/static/uploads/x.png", msg.Content)
	assert.Equal(t, uint64(1), msg.Sequence)
}
