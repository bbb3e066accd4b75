package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/niksmo/gsm-storefront/internal/core/port"
)

const (
	SenderVisitor = "You"
	SenderSupport = "Support"

	SupportReply = "Thanks, we will message you shortly. " +
		"For fast answers check Support page."

	DefaultChatReplyDelay = 800 * time.Millisecond
)

// A ChatService keeps the visitor's chat transcript as markup under
// [port.KeyChatTranscript] and answers every message with a scripted reply.
type ChatService struct {
	store      port.KeyValueStore
	replyDelay time.Duration
	policy     *bluemonday.Policy
}

func NewChatService(store port.KeyValueStore, replyDelay time.Duration) *ChatService {
	if replyDelay <= 0 {
		replyDelay = DefaultChatReplyDelay
	}
	return &ChatService{
		store:      store,
		replyDelay: replyDelay,
		policy:     transcriptPolicy(),
	}
}

func transcriptPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("div", "strong")
	p.AllowAttrs("class").OnElements("div")
	return p
}

// Transcript returns the stored markup. The stored value is client
// editable, so it is sanitized on every read.
func (s *ChatService) Transcript(ctx context.Context) (string, error) {
	const op = "ChatService.Transcript"

	raw, _, err := s.store.Get(ctx, port.KeyChatTranscript)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return s.policy.Sanitize(raw), nil
}

// Send appends text from the visitor and schedules the support reply.
// Blank messages are ignored and report false.
//
// The reply timer is not cancellable; it fires even if the visitor has
// navigated away.
func (s *ChatService) Send(ctx context.Context, text string) (bool, error) {
	const op = "ChatService.Send"

	text = strings.TrimSpace(text)
	if text == "" {
		return false, nil
	}
	if err := s.appendMessage(ctx, SenderVisitor, text); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	time.AfterFunc(s.replyDelay, s.reply)
	return true, nil
}

func (s *ChatService) reply() {
	const op = "ChatService.reply"

	// The request context is gone by the time the timer fires.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.appendMessage(ctx, SenderSupport, SupportReply); err != nil {
		slog.Error("failed to append reply", "op", op, "err", err)
	}
}

func (s *ChatService) appendMessage(
	ctx context.Context, sender, text string,
) error {
	current, err := s.Transcript(ctx)
	if err != nil {
		return err
	}
	entry := fmt.Sprintf(
		`<div class="chat-message"><strong>%s:</strong> %s</div>`,
		html.EscapeString(sender), html.EscapeString(text),
	)
	return s.store.Set(ctx, port.KeyChatTranscript, current+entry)
}
