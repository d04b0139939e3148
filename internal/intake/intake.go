// Package intake turns LINE messages into stored reports: a location
// message opens a pending report and the following text message names the
// damage.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/line/line-bot-sdk-go/v7/linebot"

	"github.com/Zachdehooge/damage-map/internal/report"
	"github.com/Zachdehooge/damage-map/internal/store"
)

const (
	promptDamage   = "被害状況を選択してください："
	promptLocation = "先に位置情報を送信してください。"
	thanksFormat   = "被害情報「%s」を受け付けました。ありがとうございました。"
)

// Replier sends a text reply, optionally with quick-reply choices.
type Replier interface {
	Reply(replyToken, text string, choices []string) error
}

// Handler serves the LINE webhook.
type Handler struct {
	bot      *linebot.Client
	store    store.Store
	replier  Replier
	onReport func(report.Report)
}

// Option customizes a Handler.
type Option func(*Handler)

// WithReplier replaces the LINE reply API client.
func WithReplier(r Replier) Option {
	return func(h *Handler) { h.replier = r }
}

// OnReport is called with every report that becomes complete.
func OnReport(fn func(report.Report)) Option {
	return func(h *Handler) { h.onReport = fn }
}

// New builds a Handler for the given channel credentials.
func New(channelSecret, channelToken string, st store.Store, opts ...Option) (*Handler, error) {
	bot, err := linebot.New(channelSecret, channelToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create LINE client: %w", err)
	}
	h := &Handler{
		bot:      bot,
		store:    st,
		replier:  lineReplier{bot: bot},
		onReport: func(report.Report) {},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	events, err := h.bot.ParseRequest(r)
	if err != nil {
		if errors.Is(err, linebot.ErrInvalidSignature) {
			http.Error(w, "Invalid signature", http.StatusBadRequest)
			return
		}
		log.Printf("[intake] parse error: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	for _, ev := range events {
		if ev.Type != linebot.EventTypeMessage || ev.Source == nil {
			continue
		}
		if err := h.handleMessage(r.Context(), ev); err != nil {
			log.Printf("[intake] event from %s: %v", ev.Source.UserID, err)
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *Handler) handleMessage(ctx context.Context, ev *linebot.Event) error {
	userID := ev.Source.UserID

	switch msg := ev.Message.(type) {
	case *linebot.LocationMessage:
		_, err := h.store.Add(ctx, report.Report{
			UserID:  userID,
			Lat:     msg.Latitude,
			Lng:     msg.Longitude,
			Pending: true,
		})
		if err != nil {
			return fmt.Errorf("store location: %w", err)
		}
		return h.replier.Reply(ev.ReplyToken, promptDamage, report.DamageChoices)

	case *linebot.TextMessage:
		r, ok, err := h.store.SetDamage(ctx, userID, msg.Text)
		if err != nil {
			return fmt.Errorf("store damage: %w", err)
		}
		if !ok {
			return h.replier.Reply(ev.ReplyToken, promptLocation, nil)
		}
		h.onReport(r)
		return h.replier.Reply(ev.ReplyToken, fmt.Sprintf(thanksFormat, msg.Text), nil)
	}
	return nil
}

type lineReplier struct {
	bot *linebot.Client
}

func (l lineReplier) Reply(replyToken, text string, choices []string) error {
	msg := linebot.NewTextMessage(text)
	var out linebot.SendingMessage = msg
	if len(choices) > 0 {
		buttons := make([]*linebot.QuickReplyButton, 0, len(choices))
		for _, c := range choices {
			buttons = append(buttons, linebot.NewQuickReplyButton("", linebot.NewMessageAction(c, c)))
		}
		out = msg.WithQuickReplies(linebot.NewQuickReplyItems(buttons...))
	}
	if _, err := l.bot.ReplyMessage(replyToken, out).Do(); err != nil {
		return fmt.Errorf("reply: %w", err)
	}
	return nil
}
