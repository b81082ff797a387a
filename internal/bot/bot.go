// Package bot is the Telegram transport for the file metadata service.
// It converts inbound commands and file messages into service calls and
// renders results back as chat messages. The sender identity supplied by
// Telegram is trusted as-is; the bot performs no authentication of its own.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tgstore/internal/filestore"
)

// sender is the subset of the Telegram client the handlers use.
// Abstracted so tests can capture outgoing messages.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot dispatches Telegram updates to the file metadata service.
type Bot struct {
	api    *tgbotapi.BotAPI
	send   sender
	svc    *filestore.Service
	logger filestore.Logger
}

// New creates a Bot connected to the Telegram API with the given token.
func New(token string, svc *filestore.Service, logger filestore.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}

	b := &Bot{
		api:    api,
		send:   api,
		svc:    svc,
		logger: logger,
	}
	logger.Info("bot authorized", "username", api.Self.UserName)
	return b, nil
}

// Run receives updates over long polling until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("bot started", "mode", "polling")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate processes a single Telegram update. It is called by the
// polling loop and by the webhook server, possibly concurrently.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.handleFileMessage(ctx, msg)
}

// SetWebhook registers url as the bot's webhook endpoint with Telegram.
func (b *Bot) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("building webhook config: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("setting webhook: %w", err)
	}
	b.logger.Info("webhook set", "url", url)
	return nil
}

// WebhookInfo returns the bot's current webhook registration.
func (b *Bot) WebhookInfo() (tgbotapi.WebhookInfo, error) {
	info, err := b.api.GetWebhookInfo()
	if err != nil {
		return tgbotapi.WebhookInfo{}, fmt.Errorf("getting webhook info: %w", err)
	}
	return info, nil
}

// DeleteWebhook removes the webhook registration, switching the bot back
// to polling. Pending updates accumulated while the webhook was broken
// are dropped.
func (b *Bot) DeleteWebhook() error {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		return fmt.Errorf("deleting webhook: %w", err)
	}
	b.logger.Info("webhook deleted")
	return nil
}

// reply sends a Markdown-formatted message to the chat.
func (b *Bot) reply(chatID int64, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.send.Send(m); err != nil {
		b.logger.Error("sending reply", "chat", chatID, "err", err)
	}
}
