package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborist/contextd/internal/adapters/driven/storage/memory"
	"github.com/harborist/contextd/internal/core/domain"
)

type fakeTenants struct {
	asked  []string
	askErr error
}

func (f *fakeTenants) Onboard(_ context.Context, _, _ string) (*domain.Tenant, error) {
	return nil, errors.New("not used")
}

func (f *fakeTenants) Ask(_ context.Context, _, content string) (*domain.Answer, error) {
	f.asked = append(f.asked, content)
	if f.askErr != nil {
		return nil, f.askErr
	}
	return &domain.Answer{}, nil
}

func newTestBot() (*Bot, *memory.ChatStore, *fakeTenants) {
	chats := memory.NewChatStore()
	tenants := &fakeTenants{}
	bot := &Bot{chats: chats, tenants: tenants, tenantID: "tenant-1"}
	return bot, chats, tenants
}

func groupUpdate(chatID int64, title, username, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text: text,
			Chat: &tgbotapi.Chat{ID: chatID, Type: "group", Title: title},
			From: &tgbotapi.User{UserName: username},
		},
	}
}

func TestHandleUpdateLogsAndForwards(t *testing.T) {
	bot, chats, tenants := newTestBot()
	ctx := context.Background()

	bot.handleUpdate(ctx, groupUpdate(-100, "team-onboarding", "casey", "standup at 10"))

	messages, err := chats.List(ctx, "-100")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "team-onboarding", messages[0].ChannelName)
	assert.Equal(t, "casey", messages[0].Sender)
	assert.Equal(t, "standup at 10", messages[0].Text)
	assert.NotEmpty(t, messages[0].ID)

	assert.Equal(t, []string{"casey: standup at 10"}, tenants.asked)
}

func TestHandleUpdateIgnoresPrivateChats(t *testing.T) {
	bot, chats, tenants := newTestBot()
	ctx := context.Background()

	update := tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text: "hello",
			Chat: &tgbotapi.Chat{ID: 42, Type: "private"},
			From: &tgbotapi.User{UserName: "casey"},
		},
	}
	bot.handleUpdate(ctx, update)

	messages, err := chats.List(ctx, "42")
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.Empty(t, tenants.asked)
}

func TestHandleUpdateIgnoresNonText(t *testing.T) {
	bot, _, tenants := newTestBot()

	bot.handleUpdate(context.Background(), tgbotapi.Update{})
	bot.handleUpdate(context.Background(), tgbotapi.Update{
		Message: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: -100, Type: "group"},
		},
	})

	assert.Empty(t, tenants.asked)
}

func TestHandleUpdateForwardFailureStillLogs(t *testing.T) {
	bot, chats, tenants := newTestBot()
	tenants.askErr = errors.New("backend down")
	ctx := context.Background()

	bot.handleUpdate(ctx, groupUpdate(-100, "team", "casey", "note"))

	messages, err := chats.List(ctx, "-100")
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestSenderNameFallbacks(t *testing.T) {
	assert.Equal(t, "casey", senderName(&tgbotapi.Message{From: &tgbotapi.User{UserName: "casey"}}))
	assert.Equal(t, "Casey", senderName(&tgbotapi.Message{From: &tgbotapi.User{FirstName: "Casey"}}))
	assert.Equal(t, "Announcements", senderName(&tgbotapi.Message{SenderChat: &tgbotapi.Chat{Title: "Announcements"}}))
	assert.Equal(t, "unknown", senderName(&tgbotapi.Message{}))
}
