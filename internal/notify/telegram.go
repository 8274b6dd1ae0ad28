package notify

import (
	"encoding/json"
	"fmt"

	"veloce/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Sender is the slice of the Telegram bot API the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier forwards booking and contact events to an ops chat.
type TelegramNotifier struct {
	sender Sender
	chatID int64
	logger *zerolog.Logger
}

func NewTelegramNotifier(token string, chatID int64, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{sender: bot, chatID: chatID, logger: logger}, nil
}

func NewTelegramNotifierWithSender(sender Sender, chatID int64, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, chatID: chatID, logger: logger}
}

// Attach subscribes the notifier to the event bus.
func (n *TelegramNotifier) Attach(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, n.handleBookingCreated)
	bus.Subscribe(events.EventContactReceived, n.handleContactReceived)
}

func (n *TelegramNotifier) handleBookingCreated(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Msg("decode booking event")
		return err
	}

	text := fmt.Sprintf(
		"🚗 New booking #%d\n%s\n%s (%s)\n%s → %s\nTotal: ₹%d",
		payload.BookingID,
		payload.CarName,
		payload.CustomerName,
		payload.CustomerPhone,
		payload.PickupDate.Format("2006-01-02"),
		payload.ReturnDate.Format("2006-01-02"),
		payload.TotalAmount,
	)
	return n.send(text)
}

func (n *TelegramNotifier) handleContactReceived(event *events.Event) error {
	var payload events.ContactEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Msg("decode contact event")
		return err
	}

	text := fmt.Sprintf("✉️ New inquiry #%d\n%s <%s>\n%s", payload.MessageID, payload.Name, payload.Email, payload.Subject)
	return n.send(text)
}

func (n *TelegramNotifier) send(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.sender.Send(msg); err != nil {
		n.logger.Error().Err(err).Msg("telegram notify failed")
		return err
	}
	return nil
}
