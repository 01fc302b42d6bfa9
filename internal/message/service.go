package message

import (
	"context"
	"strings"
	"unicode/utf8"
)

// ConversationLimit is the most messages a conversation read returns.
const ConversationLimit = 500

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Send stores a direct message. Content is trimmed and must not be empty.
func (s *Service) Send(ctx context.Context, senderID, receiverID, content string) (Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Message{}, ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return Message{}, ErrTooLong
	}
	if senderID == receiverID {
		return Message{}, ErrSelfMessage
	}

	m := &Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return Message{}, err
	}
	return *m, nil
}

// Conversation returns the newest messages between me and other in send
// order. more reports that older messages were left out.
func (s *Service) Conversation(ctx context.Context, me, other string) (msgs []Message, more bool, err error) {
	msgs, err = s.repo.Conversation(ctx, me, other, ConversationLimit+1)
	if err != nil {
		return nil, false, err
	}
	if len(msgs) > ConversationLimit {
		return msgs[len(msgs)-ConversationLimit:], true, nil
	}
	return msgs, false, nil
}
