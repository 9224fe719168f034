// Package telegram handles the integration with the Telegram Bot API.
// It is responsible for receiving updates from Telegram, turning each
// chat into a relay subscriber, and feeding traffic into the relay.
package telegram

import (
	"fmt"
	"log"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"chatrelay/backend/internal/models"
	"chatrelay/backend/internal/relay"
	"chatrelay/backend/internal/storage"
)

// session pairs a Telegram client with its relay connection handler.
type session struct {
	client  *Client
	handler *relay.ConnHandler
}

// BotService receives Telegram updates and routes them into the relay.
type BotService struct {
	BotAPI   *tgbotapi.BotAPI
	Registry *relay.Registry
	Router   *relay.Router
	Storage  storage.Storage

	mu       sync.Mutex
	sessions map[int64]*session
}

// NewBotService creates a new BotService instance.
func NewBotService(token string, registry *relay.Registry, router *relay.Router, s storage.Storage) (*BotService, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	bot.Debug = false
	log.Printf("Authorized on Telegram account %s", bot.Self.UserName)

	return &BotService{
		BotAPI:   bot,
		Registry: registry,
		Router:   router,
		Storage:  s,
		sessions: make(map[int64]*session),
	}, nil
}

// Run consumes the Telegram update stream. Blocks; run in a goroutine.
func (s *BotService) Run() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.BotAPI.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		if update.Message.IsCommand() {
			switch update.Message.Command() {
			case "start", "help":
				s.reply(update.Message.Chat.ID, "Commands: /join <room> to enter a room, /leave to exit. Anything else is relayed to the room.")
			case "join":
				s.handleJoinCommand(update.Message)
			case "leave":
				s.handleLeaveCommand(update.Message.Chat.ID)
			default:
				s.reply(update.Message.Chat.ID, "Unknown command. Try /help.")
			}
			continue
		}

		s.handleIncomingMessage(update.Message)
	}
}

// getOrCreateSession returns the chat's session, starting a new relay
// connection on first contact.
func (s *BotService) getOrCreateSession(chatID int64) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[chatID]; ok {
		return sess
	}

	userID := "tg-" + strconv.FormatInt(chatID, 10)
	client := NewClient(s.BotAPI, chatID, userID)

	handler := relay.NewConnHandler(client, s.Registry, s.Router)
	if s.Storage != nil {
		handler.SetPresence(s.Storage)
	}

	sess := &session{client: client, handler: handler}
	s.sessions[chatID] = sess
	client.Run()
	return sess
}

// handleJoinCommand enters the named room. The join message is the first
// inbound message of the session, driving the Connecting -> Joined
// transition in the connection handler.
func (s *BotService) handleJoinCommand(msg *tgbotapi.Message) {
	roomID := msg.CommandArguments()
	if roomID == "" {
		s.reply(msg.Chat.ID, "Usage: /join <room>")
		return
	}

	sess := s.getOrCreateSession(msg.Chat.ID)
	if sess.handler.State() == relay.StateJoined {
		s.reply(msg.Chat.ID, "Already in a room. /leave first.")
		return
	}

	sess.handler.HandleInbound(models.Message{RoomID: roomID})

	if sess.handler.State() == relay.StateJoined {
		s.reply(msg.Chat.ID, fmt.Sprintf("Joined room %s.", roomID))
	}
}

// handleLeaveCommand tears the session down. The next /join starts a
// fresh connection.
func (s *BotService) handleLeaveCommand(chatID int64) {
	s.mu.Lock()
	sess := s.sessions[chatID]
	delete(s.sessions, chatID)
	s.mu.Unlock()

	if sess == nil {
		s.reply(chatID, "Not in a room.")
		return
	}

	sess.handler.Shutdown()
	s.reply(chatID, "Left the room.")
}

// handleIncomingMessage relays plain chat text into the room.
func (s *BotService) handleIncomingMessage(msg *tgbotapi.Message) {
	content := msg.Text
	if content == "" {
		content = msg.Caption
	}
	if content == "" {
		return
	}

	sess := s.getOrCreateSession(msg.Chat.ID)
	sess.handler.HandleInbound(models.Message{
		Content: content,
		Kind:    models.KindText,
	})
}

func (s *BotService) reply(chatID int64, text string) {
	if _, err := s.BotAPI.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("ERROR: Failed to send Telegram reply to chat %d: %v", chatID, err)
	}
}
