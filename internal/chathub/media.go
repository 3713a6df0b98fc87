package chathub

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"

	"pairlink/backend/internal/config"
	"pairlink/backend/internal/models"
	"pairlink/backend/internal/storage"

	"github.com/google/uuid"
)

// BlobStore persists an opaque blob and returns a stable, publicly
// resolvable URL for it.
type BlobStore interface {
	Put(ctx context.Context, filename string, data []byte) (string, error)
}

// MediaJob is one inbound image or audio payload waiting for ingestion.
type MediaJob struct {
	SenderID   string
	ReceiverID string
	RoomID     string
	Payload    string // data-URI envelope, base64 body
	Kind       string // models.MessageImage or models.MessageAudio
}

// MediaService decodes inbound media envelopes and writes them to the blob
// store on a fixed worker pool, keeping disk I/O off the hub goroutine. The
// message is recorded and broadcast only after the write commits; on any
// failure nothing is recorded and the sender's user channel gets a
// media_error event.
type MediaService struct {
	Store    BlobStore
	Messages *MessageService
	Storage  storage.Storage
	Pub      Publisher

	jobs chan MediaJob
}

func NewMediaService(store BlobStore, msgs *MessageService, s storage.Storage, pub Publisher) *MediaService {
	return &MediaService{
		Store:    store,
		Messages: msgs,
		Storage:  s,
		Pub:      pub,
		jobs:     make(chan MediaJob, 64),
	}
}

// Run starts the ingest workers.
func (ms *MediaService) Run(workers int) {
	for i := 0; i < workers; i++ {
		go ms.worker()
	}
}

// Enqueue hands a job to the worker pool. A full queue drops the job and
// tells the sender, rather than stalling the hub.
func (ms *MediaService) Enqueue(job MediaJob) {
	select {
	case ms.jobs <- job:
	default:
		log.Printf("ERROR: media queue full, dropping %s from %s", job.Kind, job.SenderID)
		ms.reportFailure(job, ErrMediaIngest)
	}
}

func (ms *MediaService) worker() {
	for job := range ms.jobs {
		ms.process(job)
	}
}

func (ms *MediaService) process(job MediaJob) {
	msg, err := ms.Ingest(job)
	if err != nil {
		log.Printf("ERROR: %s ingest from %s failed: %v", job.Kind, job.SenderID, err)
		ms.reportFailure(job, err)
		return
	}

	sender, err := ms.Storage.GetUserByID(job.SenderID)
	name := "Anonymous"
	if err == nil {
		name = sender.Name
	}
	ms.Pub.ToRoom(job.RoomID, "", models.ServerEvent{
		Event:    models.EventMessage,
		Room:     job.RoomID,
		Msg:      msg.Content,
		User:     name,
		SenderID: job.SenderID,
		Type:     job.Kind,
	})
}

// Ingest decodes the envelope, writes the blob under a deadline and appends
// the message. Exposed for the tests; the realtime path goes via Enqueue.
func (ms *MediaService) Ingest(job MediaJob) (*models.Message, error) {
	data, err := decodePayload(job.Payload)
	if err != nil {
		return nil, err
	}

	filename := uuid.New().String() + extensionFor(job.Kind)

	ctx, cancel := context.WithTimeout(context.Background(), config.MediaWriteTimeout)
	defer cancel()

	url, err := ms.Store.Put(ctx, filename, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaIngest, err)
	}

	return ms.Messages.AppendMedia(job.SenderID, job.ReceiverID, url, job.Kind)
}

func (ms *MediaService) reportFailure(job MediaJob, err error) {
	reason := "upload failed"
	if errors.Is(err, ErrMalformedPayload) {
		reason = "malformed payload"
	}
	ms.Pub.ToUser(job.SenderID, models.ServerEvent{
		Event:  models.EventMediaError,
		Room:   job.RoomID,
		Type:   job.Kind,
		Reason: reason,
	})
}

// decodePayload strips the data-URI header ("data:...;base64,<body>") and
// decodes the body. A payload without the separator is malformed.
func decodePayload(payload string) ([]byte, error) {
	_, body, found := strings.Cut(payload, ",")
	if !found {
		return nil, ErrMalformedPayload
	}
	data, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if len(data) == 0 || len(data) > config.MaxMediaBytes {
		return nil, ErrMalformedPayload
	}
	return data, nil
}

func extensionFor(kind string) string {
	if kind == models.MessageAudio {
		return ".webm"
	}
	return ".png"
}
