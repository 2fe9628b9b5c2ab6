// Package notifytest provides an in-memory chat platform for tests.
package notifytest

import (
	"context"
	"strconv"
	"sync"

	"github.com/hamed0406/statusnotifier/internal/notify"
	"github.com/hamed0406/statusnotifier/internal/render"
)

var _ notify.Platform = (*Platform)(nil)

// Platform records every call and keeps messages per channel.
type Platform struct {
	mu       sync.Mutex
	nextID   int
	messages map[string]render.Presentation // message id -> content
	channels map[string]string              // message id -> channel id

	Sends, Fetches, Edits, Deletes int

	// Err, when set, fails every call with it.
	Err error
}

func New() *Platform {
	return &Platform{
		messages: map[string]render.Presentation{},
		channels: map[string]string{},
	}
}

func (p *Platform) Send(ctx context.Context, channelID string, pr render.Presentation) (notify.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Sends++
	if p.Err != nil {
		return notify.Message{}, p.Err
	}
	p.nextID++
	id := "m" + strconv.Itoa(p.nextID)
	p.messages[id] = pr
	p.channels[id] = channelID
	return notify.Message{ID: id, ChannelID: channelID}, nil
}

func (p *Platform) Fetch(ctx context.Context, channelID, messageID string) (notify.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Fetches++
	if p.Err != nil {
		return notify.Message{}, p.Err
	}
	if ch, ok := p.channels[messageID]; !ok || ch != channelID {
		return notify.Message{}, notify.ErrMessageNotFound
	}
	return notify.Message{ID: messageID, ChannelID: channelID}, nil
}

func (p *Platform) Edit(ctx context.Context, m notify.Message, pr render.Presentation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Edits++
	if p.Err != nil {
		return p.Err
	}
	if _, ok := p.messages[m.ID]; !ok {
		return notify.ErrMessageNotFound
	}
	p.messages[m.ID] = pr
	return nil
}

func (p *Platform) Delete(ctx context.Context, m notify.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Deletes++
	if p.Err != nil {
		return p.Err
	}
	if _, ok := p.messages[m.ID]; !ok {
		return notify.ErrMessageNotFound
	}
	delete(p.messages, m.ID)
	delete(p.channels, m.ID)
	return nil
}

// Vanish removes a message behind the bot's back.
func (p *Platform) Vanish(messageID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.messages, messageID)
	delete(p.channels, messageID)
}

// Message returns the current content of a message.
func (p *Platform) Message(messageID string) (render.Presentation, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pr, ok := p.messages[messageID]
	return pr, ok
}

// Live counts the messages currently present in a channel.
func (p *Platform) Live(channelID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, ch := range p.channels {
		if ch == channelID {
			n++
		}
	}
	return n
}

// SetErr swaps the failure injected into every call.
func (p *Platform) SetErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Err = err
}

// Counts returns the call counters under the lock.
func (p *Platform) Counts() (sends, fetches, edits, deletes int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Sends, p.Fetches, p.Edits, p.Deletes
}
