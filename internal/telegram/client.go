package telegram

import (
	"fmt"
	"log"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"chatrelay/backend/internal/config"
	"chatrelay/backend/internal/models"
)

// Client implements relay.Subscriber over one Telegram chat. The read
// side is handled centrally by the BotService update loop; only the
// write pump lives here.
type Client struct {
	ChatID int64
	UserID string
	BotAPI *tgbotapi.BotAPI

	roomID string

	send      chan models.Message
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient creates a relay subscriber bound to a Telegram chat.
func NewClient(bot *tgbotapi.BotAPI, chatID int64, userID string) *Client {
	return &Client{
		ChatID: chatID,
		UserID: userID,
		BotAPI: bot,
		send:   make(chan models.Message, config.SendBufferSize),
		done:   make(chan struct{}),
	}
}

func (c *Client) GetUserID() string   { return c.UserID }
func (c *Client) GetRoomID() string   { return c.roomID }
func (c *Client) SetRoomID(id string) { c.roomID = id }

// TrySend pushes a message onto the send buffer without blocking.
func (c *Client) TrySend(msg models.Message) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Run starts the write pump. The read side is the BotService update loop.
func (c *Client) Run() {
	go c.writePump()
}

// Close signals the write pump to stop.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// writePump drains the send buffer and forwards messages to Telegram.
func (c *Client) writePump() {
	defer log.Printf("Stopping write pump for Telegram client %s", c.UserID)

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			text := formatForTelegram(message)
			if text == "" {
				continue
			}
			msg := tgbotapi.NewMessage(c.ChatID, text)
			if _, err := c.BotAPI.Send(msg); err != nil {
				log.Printf("ERROR: Failed to send Telegram message to %s: %v", c.UserID, err)
			}
		}
	}
}

// formatForTelegram renders a relayed message as Telegram text.
func formatForTelegram(msg models.Message) string {
	switch msg.Kind {
	case models.KindText:
		return fmt.Sprintf("%s: %s", msg.SenderID, msg.Content)
	case models.KindJoin, models.KindLeave, models.KindError:
		return fmt.Sprintf("[%s] %s", msg.Kind, msg.Content)
	}
	return ""
}
