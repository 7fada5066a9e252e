package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/narekgrig/shopfront-backend/pkg/config"
	"github.com/narekgrig/shopfront-backend/pkg/logger"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const defaultChatAPIBase = "https://api.telegram.org"

// OrderEvent carries the facts worth announcing about a committed order.
type OrderEvent struct {
	OrderID       string
	Total         int
	ItemCount     int
	CustomerName  string
	CustomerEmail string
	DiscountPath  string
}

// Notifier announces committed orders over the configured channels. Every
// method is best effort: failures are logged and never bubble up into the
// order flow.
type Notifier struct {
	cfg     config.NotifyConfig
	logg    *logger.Logger
	client  *http.Client
	apiBase string
}

// New builds a notifier. Missing credentials disable the matching channel
// without error.
func New(cfg config.NotifyConfig, logg *logger.Logger) (*Notifier, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Notifier{
		cfg:     cfg,
		logg:    logg,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiBase: defaultChatAPIBase,
	}, nil
}

// OrderCreated fans the event out to every enabled channel.
func (n *Notifier) OrderCreated(ctx context.Context, event OrderEvent) {
	if n.cfg.ChatEnabled() {
		if err := n.sendChatMessage(ctx, chatText(event)); err != nil {
			n.logg.Error(ctx, "order chat notification failed", err)
		}
	}
	if n.cfg.EmailEnabled() && event.CustomerEmail != "" {
		if err := n.sendEmail(event); err != nil {
			n.logg.Error(ctx, "order email notification failed", err)
		}
	}
}

func chatText(event OrderEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New order #%s\n", event.OrderID)
	fmt.Fprintf(&b, "Items: %d\n", event.ItemCount)
	fmt.Fprintf(&b, "Total: %d", event.Total)
	if event.CustomerName != "" {
		fmt.Fprintf(&b, "\nCustomer: %s", event.CustomerName)
	}
	if event.DiscountPath != "" && event.DiscountPath != "none" {
		fmt.Fprintf(&b, "\nDiscount: %s", event.DiscountPath)
	}
	return b.String()
}

type chatPayload struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

func (n *Notifier) sendChatMessage(ctx context.Context, text string) error {
	body, err := json.Marshal(chatPayload{ChatID: n.cfg.ChatChannelID, Text: text})
	if err != nil {
		return fmt.Errorf("marshal chat payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.cfg.ChatBotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post chat message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("chat api returned status %d", resp.StatusCode)
	}
	return nil
}

func (n *Notifier) sendEmail(event OrderEvent) error {
	from := mail.NewEmail("Shopfront", n.cfg.SendgridFrom)
	to := mail.NewEmail(event.CustomerName, event.CustomerEmail)
	subject := fmt.Sprintf("Order #%s confirmed", event.OrderID)

	plain := fmt.Sprintf("Thank you for your order #%s. Total: %d.", event.OrderID, event.Total)
	html := fmt.Sprintf("<p>Thank you for your order <strong>#%s</strong>.</p><p>Total: %d</p>",
		event.OrderID, event.Total)

	message := mail.NewSingleEmail(from, subject, to, plain, html)
	client := sendgrid.NewSendClient(n.cfg.SendgridAPIKey)

	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("send order email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}
