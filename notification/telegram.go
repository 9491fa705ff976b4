// Package notification provides implementations for various notification services
package notification

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	tb "gopkg.in/tucnak/telebot.v2"
)

// Settings holds telegram bot credentials and recipients
type Settings struct {
	Token string
	Users []int
}

// Telegram pushes optimization progress and results to a set of
// telegram users. It implements core.Notifier.
type Telegram struct {
	settings Settings
	client   *tb.Bot
}

// NewTelegram creates and initializes a new Telegram service
func NewTelegram(settings Settings) (*Telegram, error) {
	client, err := tb.NewBot(tb.Settings{
		ParseMode: tb.ModeMarkdown,
		Token:     settings.Token,
		Poller:    &tb.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Telegram{
		settings: settings,
		client:   client,
	}, nil
}

// Notify sends a message to all configured users
func (t *Telegram) Notify(text string) {
	for _, user := range t.settings.Users {
		_, err := t.client.Send(&tb.User{ID: int64(user)}, text)
		if err != nil {
			log.WithError(err).Error("failed to send notification")
		}
	}
}

// OnError sends an error report to all configured users
func (t *Telegram) OnError(err error) {
	var sb strings.Builder
	sb.WriteString("🛑 ERROR\n")
	sb.WriteString("-----\n")
	sb.WriteString(err.Error())

	t.Notify(sb.String())
}
