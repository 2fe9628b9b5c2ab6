package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hamed0406/statusnotifier/internal/render"
)

// Upserter keeps exactly one live status message per destination.
type Upserter struct {
	Platform Platform
	Logger   *zap.Logger
}

func NewUpserter(p Platform, log *zap.Logger) *Upserter {
	return &Upserter{Platform: p, Logger: log}
}

// Upsert edits the destination's message in place, or sends a new one when
// there is none or it was deleted. On any other failure d.MessageID is left
// as it was so the next tick retries the same path.
func (u *Upserter) Upsert(ctx context.Context, d *Destination, p render.Presentation) (string, error) {
	if d.MessageID != "" {
		err := u.edit(ctx, d, p)
		if err == nil {
			return d.MessageID, nil
		}
		if !errors.Is(err, ErrMessageNotFound) {
			return d.MessageID, fmt.Errorf("edit message %s: %w", d.MessageID, err)
		}
		u.Logger.Info("status_message_vanished",
			zap.String("channel_id", d.ChannelID),
			zap.String("message_id", d.MessageID),
		)
	}

	m, err := u.Platform.Send(ctx, d.ChannelID, p)
	if err != nil {
		return d.MessageID, fmt.Errorf("send message: %w", err)
	}
	d.MessageID = m.ID
	u.Logger.Info("status_message_sent",
		zap.String("channel_id", d.ChannelID),
		zap.String("message_id", m.ID),
	)
	return d.MessageID, nil
}

func (u *Upserter) edit(ctx context.Context, d *Destination, p render.Presentation) error {
	m, err := u.Platform.Fetch(ctx, d.ChannelID, d.MessageID)
	if err != nil {
		return err
	}
	return u.Platform.Edit(ctx, m, p)
}

// Retire deletes the destination's live message, if any. Used when a
// destination moves to another channel. A vanished message is not an error.
func (u *Upserter) Retire(ctx context.Context, d Destination) error {
	if d.MessageID == "" {
		return nil
	}
	err := u.Platform.Delete(ctx, Message{ID: d.MessageID, ChannelID: d.ChannelID})
	if err != nil && !errors.Is(err, ErrMessageNotFound) {
		return fmt.Errorf("delete message %s: %w", d.MessageID, err)
	}
	return nil
}
