package notify

import (
	"context"
	"errors"

	"github.com/hamed0406/statusnotifier/internal/render"
)

// ErrMessageNotFound is returned by a Platform when the referenced message
// no longer exists, typically because someone deleted it.
var ErrMessageNotFound = errors.New("message not found")

type Message struct {
	ID        string
	ChannelID string
}

// Platform is the narrow slice of a chat service the upserter needs.
type Platform interface {
	Send(ctx context.Context, channelID string, p render.Presentation) (Message, error)
	Fetch(ctx context.Context, channelID, messageID string) (Message, error)
	Edit(ctx context.Context, m Message, p render.Presentation) error
	Delete(ctx context.Context, m Message) error
}

// Destination is one channel that owns at most one live status message.
// MessageID is empty until the first send.
type Destination struct {
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id,omitempty"`
}
