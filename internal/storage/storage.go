package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"chatrelay/backend/internal/models"
)

// Storage is the persistence surface the relay depends on. PostgreSQL
// holds message history and room records; Redis carries live presence
// sets and the pub/sub channel for cross-instance fan-out.
type Storage interface {
	SaveMessage(msg *models.Message) error
	GetChatHistory(roomID string, limit int) ([]models.ChatHistory, error)

	CreateRoom(room *models.RoomRecord) error
	GetRoomByID(roomID string) (*models.RoomRecord, error)
	GetActiveRoomIDs() ([]string, error)
	CloseRoom(roomID string) error

	AddRoomMember(roomID, userID string) error
	RemoveRoomMember(roomID, userID string) error
	GetRoomMembers(roomID string) ([]string, error)

	PublishMessage(roomID string, msg models.Message) error
}

// Service implements Storage over gorm and go-redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// roomChannel is the Redis pub/sub channel carrying one room's traffic.
func roomChannel(roomID string) string {
	return "room:" + roomID
}

// memberKey is the Redis set holding one room's live member IDs.
func memberKey(roomID string) string {
	return "room_members:" + roomID
}

// SaveMessage persists a relayed message to PostgreSQL and fills in the
// message's ID from the created history row.
func (s *Service) SaveMessage(msg *models.Message) error {
	history := models.ChatHistory{
		RoomID:   msg.RoomID,
		SenderID: msg.SenderID,
		Content:  msg.Content,
		Kind:     string(msg.Kind),
		SentAt:   msg.SentAt,
	}

	if err := s.DB.Create(&history).Error; err != nil {
		log.Printf("ERROR: Failed to save message for room %s: %v", msg.RoomID, err)
		return err
	}

	msg.ID = history.ID
	return nil
}

// GetChatHistory returns up to limit most recent messages for a room,
// oldest first.
func (s *Service) GetChatHistory(roomID string, limit int) ([]models.ChatHistory, error) {
	var history []models.ChatHistory
	err := s.DB.Where("room_id = ?", roomID).
		Order("created_at desc").
		Limit(limit).
		Find(&history).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return history, nil
		}
		log.Printf("ERROR: Failed to get chat history for room %s: %v", roomID, err)
		return nil, err
	}

	// Reverse into chronological order.
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	return history, nil
}

// CreateRoom saves a new room record in PostgreSQL.
func (s *Service) CreateRoom(room *models.RoomRecord) error {
	return s.DB.Save(room).Error
}

// GetRoomByID loads one room record.
func (s *Service) GetRoomByID(roomID string) (*models.RoomRecord, error) {
	var room models.RoomRecord

	err := s.DB.Where("room_id = ?", roomID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("room not found")
	}
	if err != nil {
		log.Printf("ERROR: Failed to get room %s: %v", roomID, err)
		return nil, err
	}
	return &room, nil
}

// GetActiveRoomIDs returns the IDs of every room that still has members.
func (s *Service) GetActiveRoomIDs() ([]string, error) {
	var roomIDs []string

	if err := s.DB.Model(&models.RoomRecord{}).
		Where("is_active = ?", true).
		Pluck("room_id", &roomIDs).Error; err != nil {

		log.Printf("ERROR: Failed to retrieve active room IDs: %v", err)
		return nil, err
	}
	return roomIDs, nil
}

// CloseRoom marks a room inactive and stamps its end time.
func (s *Service) CloseRoom(roomID string) error {
	return s.DB.Model(&models.RoomRecord{}).
		Where("room_id = ?", roomID).
		Updates(map[string]interface{}{
			"is_active": false,
			"ended_at":  gorm.Expr("NOW()"),
		}).Error
}

// AddRoomMember mirrors a join into the Redis presence set and the room
// record's member list, creating the record on the room's first join.
func (s *Service) AddRoomMember(roomID, userID string) error {
	if err := s.Redis.SAdd(s.Ctx, memberKey(roomID), userID).Err(); err != nil {
		return err
	}

	var room models.RoomRecord
	err := s.DB.Where("room_id = ?", roomID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		room = models.RoomRecord{
			RoomID:    roomID,
			Members:   pq.StringArray{userID},
			IsActive:  true,
			StartedAt: time.Now(),
		}
		return s.DB.Create(&room).Error
	}
	if err != nil {
		return err
	}

	if room.HasMember(userID) {
		return nil
	}
	room.Members = append(room.Members, userID)
	room.IsActive = true
	return s.DB.Save(&room).Error
}

// RemoveRoomMember mirrors a leave. A room whose member list empties out
// is closed.
func (s *Service) RemoveRoomMember(roomID, userID string) error {
	if err := s.Redis.SRem(s.Ctx, memberKey(roomID), userID).Err(); err != nil {
		return err
	}

	var room models.RoomRecord
	err := s.DB.Where("room_id = ?", roomID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	members := make(pq.StringArray, 0, len(room.Members))
	for _, m := range room.Members {
		if m != userID {
			members = append(members, m)
		}
	}
	room.Members = members
	if len(members) == 0 {
		room.IsActive = false
		room.EndedAt = time.Now()
	}
	return s.DB.Save(&room).Error
}

// GetRoomMembers returns the live member IDs from the presence set.
func (s *Service) GetRoomMembers(roomID string) ([]string, error) {
	return s.Redis.SMembers(s.Ctx, memberKey(roomID)).Result()
}

// PublishMessage publishes a message onto the room's pub/sub channel.
func (s *Service) PublishMessage(roomID string, msg models.Message) error {
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	if err := s.Redis.Publish(s.Ctx, roomChannel(roomID), string(msgBytes)).Err(); err != nil {
		return err
	}

	return nil
}

// SubscribeToAllRooms opens one pattern subscription covering every
// room's channel, for the pub/sub bridge.
func (s *Service) SubscribeToAllRooms() *redis.PubSub {
	return s.Redis.PSubscribe(s.Ctx, roomChannel("*"))
}
