package page

import (
	"context"
	"fmt"

	"github.com/niksmo/gsm-storefront/internal/core/service"
)

type ChatView struct {
	Chrome
	// Transcript is sanitized markup.
	Transcript string
}

func (s *Storefront) chatService(st *AppState) *service.ChatService {
	return service.NewChatService(st.Store, s.settings.ChatReplyDelay)
}

func (s *Storefront) Chat(ctx context.Context, st *AppState) (ChatView, error) {
	const op = "Storefront.Chat"

	v := ChatView{Chrome: s.chrome(ctx, st)}
	transcript, err := s.chatService(st).Transcript(ctx)
	if err != nil {
		return v, fmt.Errorf("%s: %w", op, err)
	}
	v.Transcript = transcript
	return v, nil
}

// SendChat appends a visitor message; the support reply follows after the
// configured delay. Blank messages report false.
func (s *Storefront) SendChat(
	ctx context.Context, st *AppState, text string,
) (bool, error) {
	const op = "Storefront.SendChat"

	sent, err := s.chatService(st).Send(ctx, text)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return sent, nil
}
