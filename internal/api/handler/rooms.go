package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"chatrelay/backend/internal/config"
	"chatrelay/backend/internal/models"
)

// CreateRoom mints a new room key and records it.
func (h *Handler) CreateRoom(c *gin.Context) {
	roomID := uuid.New().String()

	room := &models.RoomRecord{
		RoomID:    roomID,
		IsActive:  true,
		StartedAt: time.Now(),
	}
	if err := h.Storage.CreateRoom(room); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"room_id": roomID})
}

// GetRoomHistory returns the most recent persisted messages for a room,
// oldest first.
func (h *Handler) GetRoomHistory(c *gin.Context) {
	roomID := c.Param("id")

	history, err := h.Storage.GetChatHistory(roomID, config.HistoryPageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"room_id": roomID, "messages": history})
}

// GetRoomMembers returns the live presence set for a room.
func (h *Handler) GetRoomMembers(c *gin.Context) {
	roomID := c.Param("id")

	members, err := h.Storage.GetRoomMembers(roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load members"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"room_id": roomID, "members": members})
}
