// Package bot is the Telegram approval console: administrators review
// pending registrations one at a time and approve or reject them.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"lavka.org/internal/auth"
	"lavka.org/internal/obs"
)

const opTimeout = 10 * time.Second

// Bot drives the long-polling loop and the approval callbacks.
type Bot struct {
	bot      *telego.Bot
	handler  *th.BotHandler
	accounts *auth.AccountService
	adminIDs []int64
}

// New connects to the Telegram API. adminIDs limits who may operate the
// console; an empty list allows anyone, which is only sane in dev.
func New(token string, accounts *auth.AccountService, adminIDs []int64) (*Bot, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("bot: token is required")
	}
	if accounts == nil {
		return nil, fmt.Errorf("bot: account service is required")
	}
	b, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("bot: connect: %w", err)
	}
	return &Bot{bot: b, accounts: accounts, adminIDs: adminIDs}, nil
}

// Run starts long polling and blocks until Stop is called.
func (b *Bot) Run() error {
	updates, err := b.bot.UpdatesViaLongPolling(&telego.GetUpdatesParams{Timeout: 10})
	if err != nil {
		return fmt.Errorf("bot: long polling: %w", err)
	}
	handler, err := th.NewBotHandler(b.bot, updates)
	if err != nil {
		return fmt.Errorf("bot: handler: %w", err)
	}
	b.handler = handler

	handler.HandleMessage(func(_ *telego.Bot, message telego.Message) {
		if !b.allowed(message.From.ID) {
			b.send(message.Chat.ID, "This console is restricted.", nil)
			return
		}
		b.answerCommand(&message)
	}, th.AnyCommand())

	handler.HandleCallbackQuery(func(_ *telego.Bot, query telego.CallbackQuery) {
		if !b.allowed(query.From.ID) {
			b.answerCallbackText(query.ID, "This console is restricted.")
			return
		}
		b.answerCallback(&query)
	}, th.AnyCallbackQueryWithMessage())

	handler.Start()
	return nil
}

// Stop shuts down the polling loop.
func (b *Bot) Stop() {
	if b.handler != nil {
		b.handler.Stop()
	}
	b.bot.StopLongPolling()
}

func (b *Bot) allowed(userID int64) bool {
	if len(b.adminIDs) == 0 {
		return true
	}
	for _, id := range b.adminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *Bot) answerCommand(message *telego.Message) {
	command, _, _ := tu.ParseCommand(message.Text)
	switch command {
	case "start":
		b.send(message.Chat.ID,
			"Hello "+message.From.FirstName+" 👋\n"+
				"I manage pending registrations. Use /pending to review them.", nil)
	case "pending":
		b.showPending(message.Chat.ID, 0, 0)
	default:
		b.send(message.Chat.ID, "Unknown command. Use /pending.", nil)
	}
}

func (b *Bot) answerCallback(query *telego.CallbackQuery) {
	chatID := query.Message.GetChat().ID
	messageID := query.Message.GetMessageID()
	fields := strings.Fields(query.Data)
	if len(fields) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	switch fields[0] {
	case "page":
		page := 0
		if len(fields) > 1 {
			page, _ = strconv.Atoi(fields[1])
		}
		b.answerCallbackText(query.ID, "")
		b.showPendingAt(chatID, page, messageID)
	case "approve":
		if len(fields) < 2 {
			return
		}
		account, err := b.accounts.Approve(ctx, fields[1])
		if err != nil {
			b.answerCallbackText(query.ID, "Approve failed: "+err.Error())
		} else {
			b.answerCallbackText(query.ID, "✅ "+account.Email+" approved")
		}
		b.showPendingAt(chatID, 0, messageID)
	case "reject":
		if len(fields) < 2 {
			return
		}
		if err := b.accounts.RejectPending(ctx, fields[1]); err != nil {
			b.answerCallbackText(query.ID, "Reject failed: "+err.Error())
		} else {
			b.answerCallbackText(query.ID, "❌ Registration rejected")
		}
		b.showPendingAt(chatID, 0, messageID)
	case "approve_all":
		n, err := b.accounts.ApproveAll(ctx)
		if err != nil {
			b.answerCallbackText(query.ID, "Approve all failed: "+err.Error())
		} else {
			b.answerCallbackText(query.ID, fmt.Sprintf("✅ %d approved", n))
		}
		b.showPendingAt(chatID, 0, messageID)
	case "reject_all":
		n, err := b.accounts.RejectAll(ctx)
		if err != nil {
			b.answerCallbackText(query.ID, "Reject all failed: "+err.Error())
		} else {
			b.answerCallbackText(query.ID, fmt.Sprintf("❌ %d rejected", n))
		}
		b.showPendingAt(chatID, 0, messageID)
	}
}

// showPending sends a fresh message; showPendingAt edits an existing one.
func (b *Bot) showPending(chatID int64, page, messageID int) {
	text, keyboard := b.pendingPage(page)
	if messageID > 0 {
		b.edit(chatID, messageID, text, keyboard)
		return
	}
	b.send(chatID, text, keyboard)
}

func (b *Bot) showPendingAt(chatID int64, page, messageID int) {
	b.showPending(chatID, page, messageID)
}

func (b *Bot) pendingPage(page int) (string, *telego.InlineKeyboardMarkup) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if page < 0 {
		page = 0
	}
	accounts, total, err := b.accounts.ListByRole(ctx, auth.RolePending, pageSize, page*pageSize)
	if err != nil {
		obs.Logger().Printf("telegram bot: list pending: %v", err)
		return "Could not load pending registrations, try again.", nil
	}
	// The page may have drained under us; fall back to the first one.
	if len(accounts) == 0 && total > 0 && page > 0 {
		return b.pendingPage(0)
	}
	return renderPendingPage(accounts, total, page)
}

func (b *Bot) send(chatID int64, text string, keyboard *telego.InlineKeyboardMarkup) {
	params := telego.SendMessageParams{
		ChatID: tu.ID(chatID),
		Text:   text,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}
	if _, err := b.bot.SendMessage(&params); err != nil {
		obs.Logger().Printf("telegram bot: send message: %v", err)
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string, keyboard *telego.InlineKeyboardMarkup) {
	params := telego.EditMessageTextParams{
		ChatID:    tu.ID(chatID),
		MessageID: messageID,
		Text:      text,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}
	if _, err := b.bot.EditMessageText(&params); err != nil {
		obs.Logger().Printf("telegram bot: edit message: %v", err)
	}
}

func (b *Bot) answerCallbackText(id, text string) {
	params := telego.AnswerCallbackQueryParams{
		CallbackQueryID: id,
		Text:            text,
	}
	if err := b.bot.AnswerCallbackQuery(&params); err != nil {
		obs.Logger().Printf("telegram bot: answer callback: %v", err)
	}
}
