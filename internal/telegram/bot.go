// internal/telegram/bot.go
package telegram

import (
	"context"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v4"

	"librabot/internal/chat"
)

const handleTimeout = 30 * time.Second

// Bot adapts the Telegram transport to the chat dispatcher: every
// text update goes through the dispatcher, every reply goes back with
// its keyboard.
type Bot struct {
	bot    *tele.Bot
	engine *chat.Engine
	log    *zap.Logger

	loginMenu  *tele.ReplyMarkup
	mainMenu   *tele.ReplyMarkup
	searchMenu *tele.ReplyMarkup
	removeMenu *tele.ReplyMarkup
}

// New connects to the Telegram API and wires the update handlers.
func New(token string, engine *chat.Engine, log *zap.Logger) (*Bot, error) {
	tb, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, err
	}

	b := &Bot{
		bot:        tb,
		engine:     engine,
		log:        log,
		loginMenu:  keyboard(chat.LoginMenuRows),
		mainMenu:   keyboard(chat.MainMenuRows),
		searchMenu: keyboard(chat.SearchMenuRows),
		removeMenu: &tele.ReplyMarkup{RemoveKeyboard: true},
	}

	// Slash commands are routed before OnText, so they need their own
	// registrations.
	for _, cmd := range []string{chat.CmdStart, chat.CmdLogin, chat.CmdMenu, chat.CmdHelp} {
		tb.Handle(cmd, b.onText)
	}
	tb.Handle(tele.OnText, b.onText)

	return b, nil
}

// Start begins long-polling. It blocks until Stop is called.
func (b *Bot) Start() {
	b.log.Info("telegram poller started", zap.String("bot", b.bot.Me.Username))
	b.bot.Start()
}

// Stop shuts the poller down.
func (b *Bot) Stop() {
	b.bot.Stop()
}

func (b *Bot) onText(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	chatID := c.Chat().ID
	for _, reply := range b.engine.Handle(ctx, chatID, c.Text()) {
		var err error
		if markup := b.markup(reply.Menu); markup != nil {
			err = c.Send(reply.Text, markup)
		} else {
			err = c.Send(reply.Text)
		}
		if err != nil {
			b.log.Error("send reply", zap.Int64("chat_id", chatID), zap.Error(err))
			return err
		}
	}
	return nil
}

func (b *Bot) markup(menu chat.Menu) *tele.ReplyMarkup {
	switch menu {
	case chat.MenuLogin:
		return b.loginMenu
	case chat.MenuMain:
		return b.mainMenu
	case chat.MenuSearch:
		return b.searchMenu
	case chat.MenuRemove:
		return b.removeMenu
	default:
		return nil
	}
}

func keyboard(rows [][]string) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{ResizeKeyboard: true}
	var keyboardRows []tele.Row
	for _, row := range rows {
		var buttons []tele.Btn
		for _, label := range row {
			buttons = append(buttons, m.Text(label))
		}
		keyboardRows = append(keyboardRows, m.Row(buttons...))
	}
	m.Reply(keyboardRows...)
	return m
}
