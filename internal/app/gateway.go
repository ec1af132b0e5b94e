package app

import (
	"errors"
	"strconv"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/mediabot/internal/pipeline"
)

var errGatewayNotReady = errors.New("telegram gateway: bot not started")

// telegramGateway implements pipeline.Gateway over the live bot instance,
// which only becomes available once the Telegram runtime has started.
type telegramGateway struct {
	bot atomic.Pointer[tele.Bot]
}

// Bind attaches the running bot; called from the runtime OnStart hook.
func (g *telegramGateway) Bind(b *tele.Bot) {
	g.bot.Store(b)
}

func (g *telegramGateway) SendText(userID int64, text string) (pipeline.Message, error) {
	b := g.bot.Load()
	if b == nil {
		return pipeline.Message{}, errGatewayNotReady
	}
	msg, err := b.Send(&tele.User{ID: userID}, text)
	if err != nil {
		return pipeline.Message{}, err
	}
	return pipeline.Message{ChatID: msg.Chat.ID, ID: msg.ID}, nil
}

func (g *telegramGateway) EditText(m pipeline.Message, text string) error {
	b := g.bot.Load()
	if b == nil {
		return errGatewayNotReady
	}
	if m.ID == 0 {
		return errors.New("telegram gateway: no message to edit")
	}
	_, err := b.Edit(&tele.StoredMessage{
		MessageID: strconv.Itoa(m.ID),
		ChatID:    m.ChatID,
	}, text)
	return err
}

func (g *telegramGateway) SendAudio(userID int64, filePath, caption string) error {
	b := g.bot.Load()
	if b == nil {
		return errGatewayNotReady
	}
	audio := &tele.Audio{
		File:    tele.FromDisk(filePath),
		Caption: caption,
	}
	_, err := b.Send(&tele.User{ID: userID}, audio)
	return err
}
