// Package discord connects the status loop to a Discord bot session.
package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/hamed0406/statusnotifier/internal/config"
	"github.com/hamed0406/statusnotifier/internal/notify"
	"github.com/hamed0406/statusnotifier/internal/render"
)

const (
	replyDenied  = "You need to be an administrator to use this command."
	replyFailed  = "Something went wrong."
	replyTracked = "🛰️ System status is now tracked in this channel."
)

// api is the subset of *discordgo.Session the bot calls.
type api interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	ChannelMessageSendReply(channelID, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error)
}

var _ notify.Platform = (*Bot)(nil)

// StatusHandler is called when an administrator issues the status command.
type StatusHandler func(ctx context.Context, guildID, channelID string) error

type Bot struct {
	session *discordgo.Session
	api     api
	log     *zap.Logger
	prefix  string
	display config.Display
	now     func() time.Time

	ctx      context.Context
	onStatus StatusHandler
}

func New(token, prefix string, display config.Display, log *zap.Logger) (*Bot, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	b := newBot(s, prefix, display, log)
	b.session = s
	s.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) { b.onReady(r) })
	s.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) { b.onMessage(m) })
	return b, nil
}

func newBot(a api, prefix string, display config.Display, log *zap.Logger) *Bot {
	return &Bot{
		api:     a,
		log:     log,
		prefix:  prefix,
		display: display,
		now:     time.Now,
		ctx:     context.Background(),
	}
}

// OnStatus sets the handler run by the status command. Set it before Open.
func (b *Bot) OnStatus(h StatusHandler) { b.onStatus = h }

// Open logs in and starts receiving events. Command handlers run with ctx.
func (b *Bot) Open(ctx context.Context) error {
	b.ctx = ctx
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	if b.session == nil {
		return nil
	}
	return b.session.Close()
}

func (b *Bot) onReady(r *discordgo.Ready) {
	b.log.Info("bot_ready",
		zap.String("user", r.User.String()),
		zap.Int("guilds", len(r.Guilds)),
	)
}

func (b *Bot) onMessage(m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	if strings.TrimSpace(m.Content) != b.prefix+"status" {
		return
	}
	log := b.log.With(
		zap.String("guild_id", m.GuildID),
		zap.String("channel_id", m.ChannelID),
		zap.String("user_id", m.Author.ID),
	)

	perms, err := b.api.UserChannelPermissions(m.Author.ID, m.ChannelID, discordgo.WithContext(b.ctx))
	if err != nil {
		log.Warn("permission_check_failed", zap.Error(err))
		b.reply(log, m, replyFailed)
		return
	}
	if perms&discordgo.PermissionAdministrator == 0 {
		log.Info("status_command_denied")
		b.reply(log, m, replyDenied)
		return
	}

	if b.onStatus != nil {
		if err := b.onStatus(b.ctx, m.GuildID, m.ChannelID); err != nil {
			log.Error("status_command_failed", zap.Error(err))
			b.reply(log, m, replyFailed)
			return
		}
	}
	log.Info("status_command_accepted")
	b.reply(log, m, replyTracked)
}

func (b *Bot) reply(log *zap.Logger, m *discordgo.MessageCreate, text string) {
	if _, err := b.api.ChannelMessageSendReply(m.ChannelID, text, m.Reference(), discordgo.WithContext(b.ctx)); err != nil {
		log.Warn("reply_failed", zap.Error(err))
	}
}

// --- notify.Platform ---

func (b *Bot) Send(ctx context.Context, channelID string, p render.Presentation) (notify.Message, error) {
	msg, err := b.api.ChannelMessageSendEmbed(channelID, Embed(b.display, p, b.now()), discordgo.WithContext(ctx))
	if err != nil {
		return notify.Message{}, mapErr(err)
	}
	return notify.Message{ID: msg.ID, ChannelID: msg.ChannelID}, nil
}

func (b *Bot) Fetch(ctx context.Context, channelID, messageID string) (notify.Message, error) {
	msg, err := b.api.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return notify.Message{}, mapErr(err)
	}
	return notify.Message{ID: msg.ID, ChannelID: msg.ChannelID}, nil
}

func (b *Bot) Edit(ctx context.Context, m notify.Message, p render.Presentation) error {
	_, err := b.api.ChannelMessageEditEmbed(m.ChannelID, m.ID, Embed(b.display, p, b.now()), discordgo.WithContext(ctx))
	return mapErr(err)
}

func (b *Bot) Delete(ctx context.Context, m notify.Message) error {
	return mapErr(b.api.ChannelMessageDelete(m.ChannelID, m.ID, discordgo.WithContext(ctx)))
}

// mapErr turns Discord's unknown-message answers into notify.ErrMessageNotFound.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) {
		if rest.Message != nil && rest.Message.Code == discordgo.ErrCodeUnknownMessage {
			return fmt.Errorf("%w: %v", notify.ErrMessageNotFound, err)
		}
		if rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %v", notify.ErrMessageNotFound, err)
		}
	}
	return err
}
