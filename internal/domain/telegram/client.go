package telegram

import "gopkg.in/telebot.v3"

// Client sends chat messages to workshop owners. Alerts, inbox listings and
// acknowledgements all go through it so the app layer never touches the bot directly.
type Client interface {
	SendMessage(chatID int64, text string, options *telebot.SendOptions) error
}
