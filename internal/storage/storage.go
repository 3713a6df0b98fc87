package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"pairlink/backend/internal/models"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a referenced user, pairing or room does not
// exist. HTTP handlers map it to 404.
var ErrNotFound = errors.New("storage: record not found")

// searchQueueKey is the Redis set mirroring the is_searching flags.
const searchQueueKey = "search_queue"

// eventChannel is the Redis pub/sub channel carrying room envelopes.
const eventChannel = "chat:events"

type Storage interface {
	SaveUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	SaveAnswers(userID string, answers []string) error
	MarkSearching(userID string, searching bool) error
	FindWaitingPartner(excludeID string) (*models.User, error)
	GetSearchingUsers() ([]string, error)

	CommitPairing(pairing *models.Pairing) error
	GetPairing(a, b string) (*models.Pairing, error)
	GetPairingsForUser(userID string) ([]models.Pairing, error)

	SaveRevealRequest(requesterID, receiverID string) error
	HasRevealRequest(requesterID, receiverID string) (bool, error)

	SaveMessage(msg *models.Message) error
	GetMessages(roomID string) ([]models.Message, error)
	LastSequence(roomID string) (uint64, error)

	PublishEvent(env models.Envelope) error
}

// Service is the PostgreSQL + Redis implementation of Storage.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

func (s *Service) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) SaveAnswers(userID string, answers []string) error {
	res := s.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("answers", pq.StringArray(answers))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkSearching flips the durable is_searching flag and keeps the Redis
// search-queue set in step with it. SearchingSince is stamped on entry so
// the matcher can resolve the queue in FIFO order.
func (s *Service) MarkSearching(userID string, searching bool) error {
	updates := map[string]interface{}{
		"is_searching":    searching,
		"searching_since": nil,
	}
	if searching {
		updates["searching_since"] = time.Now()
	}

	res := s.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	if searching {
		return s.Redis.SAdd(s.Ctx, searchQueueKey, userID).Err()
	}
	return s.Redis.SRem(s.Ctx, searchQueueKey, userID).Err()
}

// FindWaitingPartner returns the earliest-waiting user other than excludeID
// that has a completed answer-set, or nil when nobody is waiting.
func (s *Service) FindWaitingPartner(excludeID string) (*models.User, error) {
	var user models.User
	err := s.DB.
		Where("is_searching = ?", true).
		Where("id <> ?", excludeID).
		Where("answers IS NOT NULL AND cardinality(answers) > 0").
		Order("searching_since asc").
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetSearchingUsers returns the ids currently in the Redis search-queue set.
func (s *Service) GetSearchingUsers() ([]string, error) {
	return s.Redis.SMembers(s.Ctx, searchQueueKey).Result()
}

// CommitPairing creates the pairing and clears both members' searching
// state in one transaction, so a failed write can never leave a committed
// pairing with a member still flagged. The Redis set is trimmed after the
// commit; a failure there leaves a stale entry that Reconcile drops on the
// next boot.
func (s *Service) CommitPairing(pairing *models.Pairing) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(pairing).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id IN ?", []string{pairing.UserAID, pairing.UserBID}).
			Updates(map[string]interface{}{
				"is_searching":    false,
				"searching_since": nil,
			}).Error
	})
	if err != nil {
		return err
	}

	if err := s.Redis.SRem(s.Ctx, searchQueueKey, pairing.UserAID, pairing.UserBID).Err(); err != nil {
		log.Printf("ERROR: failed to drop paired users from the search set: %v", err)
	}
	return nil
}

// GetPairing looks up the pairing for an unordered user pair.
func (s *Service) GetPairing(a, b string) (*models.Pairing, error) {
	if b < a {
		a, b = b, a
	}
	var pairing models.Pairing
	err := s.DB.First(&pairing, "user_a_id = ? AND user_b_id = ?", a, b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pairing, nil
}

func (s *Service) GetPairingsForUser(userID string) ([]models.Pairing, error) {
	var pairings []models.Pairing
	err := s.DB.
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("created_at asc").
		Find(&pairings).Error
	if err != nil {
		return nil, err
	}
	return pairings, nil
}

// SaveRevealRequest persists one direction of the handshake. Re-signaling is
// idempotent: the row is only created if it does not exist yet.
func (s *Service) SaveRevealRequest(requesterID, receiverID string) error {
	req := models.RevealRequest{RequesterID: requesterID, ReceiverID: receiverID}
	return s.DB.
		Where("requester_id = ? AND receiver_id = ?", requesterID, receiverID).
		FirstOrCreate(&req).Error
}

func (s *Service) HasRevealRequest(requesterID, receiverID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.RevealRequest{}).
		Where("requester_id = ? AND receiver_id = ?", requesterID, receiverID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) SaveMessage(msg *models.Message) error {
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: failed to save message for room %s: %v", msg.RoomID, err)
		return err
	}
	return nil
}

// GetMessages loads the full history of a room ordered by sequence.
func (s *Service) GetMessages(roomID string) ([]models.Message, error) {
	var messages []models.Message
	err := s.DB.
		Where("room_id = ?", roomID).
		Order("sequence asc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// LastSequence returns the highest sequence already assigned in a room, or
// zero for a fresh room. The message log seeds its counters from it.
func (s *Service) LastSequence(roomID string) (uint64, error) {
	var last uint64
	err := s.DB.Model(&models.Message{}).
		Where("room_id = ?", roomID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&last).Error
	if err != nil {
		return 0, err
	}
	return last, nil
}

// PublishEvent pushes a routed envelope onto the Redis event channel. The
// hub's listener feeds it back to the local sessions.
func (s *Service) PublishEvent(env models.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, eventChannel, payload).Err()
}

// SubscribeEvents subscribes to the event channel and returns a stream of
// decoded envelopes. The stream closes when ctx is cancelled.
func (s *Service) SubscribeEvents(ctx context.Context) <-chan models.Envelope {
	out := make(chan models.Envelope, 64)
	pubsub := s.Redis.Subscribe(ctx, eventChannel)

	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env models.Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					log.Printf("ERROR: failed to decode pub/sub envelope: %v", err)
					continue
				}
				out <- env
			}
		}
	}()

	return out
}
