// Package telegram relays group chat messages into the context store and
// the memory backend.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/harborist/contextd/internal/core/domain"
	"github.com/harborist/contextd/internal/core/ports/driven"
	"github.com/harborist/contextd/internal/core/ports/driving"
	"github.com/harborist/contextd/internal/logger"
)

// updateTimeout is the long-poll timeout in seconds.
const updateTimeout = 30

// Bot long-polls Telegram for group messages. Each text message is logged
// to the chat store and forwarded to the tenant's assistant so the backend
// memorises it. Forwarding failures are logged, never fatal: the bot is a
// best-effort producer.
type Bot struct {
	api      *tgbotapi.BotAPI
	chats    driven.ChatStore
	tenants  driving.TenantService
	tenantID string
}

// NewBot creates a Telegram bot relaying messages for one tenant.
func NewBot(token string, chats driven.ChatStore, tenants driving.TenantService, tenantID string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	logger.Info("Telegram bot authorized as @%s", api.Self.UserName)

	return &Bot{
		api:      api,
		chats:    chats,
		tenants:  tenants,
		tenantID: tenantID,
	}, nil
}

// Run consumes updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = updateTimeout
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate processes one update: group text messages only.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}
	if !msg.Chat.IsGroup() && !msg.Chat.IsSuperGroup() {
		return
	}

	sender := senderName(msg)
	record := &domain.ChatMessage{
		ID:          uuid.NewString(),
		ChatID:      strconv.FormatInt(msg.Chat.ID, 10),
		ChannelName: msg.Chat.Title,
		Sender:      sender,
		Text:        msg.Text,
		LoggedAt:    time.Now().UTC(),
	}
	if err := b.chats.Append(ctx, record); err != nil {
		logger.Warn("Failed to log chat message: %v", err)
	}

	// Relaying through the assistant thread stores the message in the
	// backend's memory.
	if _, err := b.tenants.Ask(ctx, b.tenantID, sender+": "+msg.Text); err != nil {
		logger.Warn("Failed to forward chat message: %v", err)
		return
	}
	logger.Debug("Relayed message from %s in %s", sender, msg.Chat.Title)
}

// senderName picks a display name for the message author.
func senderName(msg *tgbotapi.Message) string {
	if msg.From != nil {
		if msg.From.UserName != "" {
			return msg.From.UserName
		}
		return msg.From.FirstName
	}
	if msg.SenderChat != nil {
		return msg.SenderChat.Title
	}
	return "unknown"
}
