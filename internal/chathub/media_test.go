package chathub_test

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pairlink/backend/internal/chathub"
	"pairlink/backend/internal/config"
	"pairlink/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Put(ctx context.Context, filename string, data []byte) (string, error) {
	return "", errors.New("disk on fire")
}

func newMediaFixture(t *testing.T) (*chathub.MediaService, *memStorage, *recordingPublisher, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := chathub.NewDiskStore(dir, "/static/uploads")
	require.NoError(t, err)

	mem := newMemStorage()
	mem.addUser(answeredUser("user_A", "Alice"))
	mem.addUser(answeredUser("user_B", "Bob"))
	pub := &recordingPublisher{}
	media := chathub.NewMediaService(store, chathub.NewMessageService(mem), mem, pub)
	return media, mem, pub, dir
}

func imageJob(payload string) chathub.MediaJob {
	return chathub.MediaJob{
		SenderID:   "user_A",
		ReceiverID: "user_B",
		RoomID:     models.RoomID("user_A", "user_B"),
		Payload:    payload,
		Kind:       models.MessageImage,
	}
}

func TestIngestRoundTrip(t *testing.T) {
	media, _, _, dir := newMediaFixture(t)

	raw := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 1, 2, 3}
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	msg, err := media.Ingest(imageJob(payload))
	require.NoError(t, err)
	assert.Equal(t, models.MessageImage, msg.Type)
	assert.True(t, strings.HasPrefix(msg.Content, "/static/uploads/"))
	assert.True(t, strings.HasSuffix(msg.Content, ".png"))

	// Reading the stored reference back yields the original bytes.
	stored, err := os.ReadFile(filepath.Join(dir, filepath.Base(msg.Content)))
	require.NoError(t, err)
	assert.Equal(t, raw, stored)
}

func TestIngestAudioExtension(t *testing.T) {
	media, _, _, _ := newMediaFixture(t)

	payload := "data:audio/webm;base64," + base64.StdEncoding.EncodeToString([]byte("opus"))
	job := imageJob(payload)
	job.Kind = models.MessageAudio

	msg, err := media.Ingest(job)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(msg.Content, ".webm"))
}

func TestIngestRejectsMissingSeparator(t *testing.T) {
	media, mem, _, _ := newMediaFixture(t)

	_, err := media.Ingest(imageJob("not-a-data-uri"))
	assert.ErrorIs(t, err, chathub.ErrMalformedPayload)

	history, _ := mem.GetMessages(models.RoomID("user_A", "user_B"))
	assert.Empty(t, history, "no message may be recorded on decode failure")
}

func TestIngestRejectsOversizePayload(t *testing.T) {
	media, mem, _, _ := newMediaFixture(t)

	raw := make([]byte, config.MaxMediaBytes+1)
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	_, err := media.Ingest(imageJob(payload))
	assert.ErrorIs(t, err, chathub.ErrMalformedPayload)

	history, _ := mem.GetMessages(models.RoomID("user_A", "user_B"))
	assert.Empty(t, history)
}

func TestIngestRejectsBadBase64(t *testing.T) {
	media, _, _, _ := newMediaFixture(t)

	_, err := media.Ingest(imageJob("data:image/png;base64,@@not-base64@@"))
	assert.ErrorIs(t, err, chathub.ErrMalformedPayload)
}

func TestIngestStoreFailure(t *testing.T) {
	mem := newMemStorage()
	pub := &recordingPublisher{}
	media := chathub.NewMediaService(failingStore{}, chathub.NewMessageService(mem), mem, pub)

	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("x"))
	_, err := media.Ingest(imageJob(payload))
	assert.ErrorIs(t, err, chathub.ErrMediaIngest)

	history, _ := mem.GetMessages(models.RoomID("user_A", "user_B"))
	assert.Empty(t, history)
}
