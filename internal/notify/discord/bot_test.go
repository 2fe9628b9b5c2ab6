package discord

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/hamed0406/statusnotifier/internal/config"
	"github.com/hamed0406/statusnotifier/internal/notify"
	"github.com/hamed0406/statusnotifier/internal/render"
)

// fakeAPI records calls and answers from fields.
type fakeAPI struct {
	perms    int64
	permsErr error
	getErr   error

	sent    []*discordgo.MessageEmbed
	edited  []string
	replies []string
}

func (f *fakeAPI) ChannelMessageSendEmbed(channelID string, e *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, e)
	return &discordgo.Message{ID: "m1", ChannelID: channelID}, nil
}

func (f *fakeAPI) ChannelMessage(channelID, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &discordgo.Message{ID: messageID, ChannelID: channelID}, nil
}

func (f *fakeAPI) ChannelMessageEditEmbed(channelID, messageID string, _ *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.edited = append(f.edited, messageID)
	return &discordgo.Message{ID: messageID, ChannelID: channelID}, nil
}

func (f *fakeAPI) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	return nil
}

func (f *fakeAPI) ChannelMessageSendReply(channelID, content string, _ *discordgo.MessageReference, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.replies = append(f.replies, content)
	return &discordgo.Message{}, nil
}

func (f *fakeAPI) UserChannelPermissions(userID, channelID string, _ ...discordgo.RequestOption) (int64, error) {
	return f.perms, f.permsErr
}

func command(content string, bot bool) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "cmd1",
		GuildID:   "g1",
		ChannelID: "c1",
		Content:   content,
		Author:    &discordgo.User{ID: "u1", Bot: bot},
	}}
}

type call struct{ guild, channel string }

func newTestBot(f *fakeAPI) (*Bot, *[]call) {
	b := newBot(f, ".", config.DefaultDisplay, zap.NewNop())
	var calls []call
	b.OnStatus(func(ctx context.Context, guildID, channelID string) error {
		calls = append(calls, call{guildID, channelID})
		return nil
	})
	return b, &calls
}

func TestStatusCommand_AdminStartsTracking(t *testing.T) {
	f := &fakeAPI{perms: discordgo.PermissionAdministrator}
	b, calls := newTestBot(f)

	b.onMessage(command(".status", false))

	if len(*calls) != 1 || (*calls)[0] != (call{"g1", "c1"}) {
		t.Fatalf("want one start for g1/c1, got %+v", *calls)
	}
	if len(f.replies) != 1 || f.replies[0] != replyTracked {
		t.Fatalf("unexpected replies: %v", f.replies)
	}
}

func TestStatusCommand_NonAdminDenied(t *testing.T) {
	f := &fakeAPI{perms: discordgo.PermissionSendMessages}
	b, calls := newTestBot(f)

	b.onMessage(command(".status", false))

	if len(*calls) != 0 {
		t.Fatalf("non-admin must not start tracking")
	}
	if len(f.replies) != 1 || f.replies[0] != replyDenied {
		t.Fatalf("want denial reply, got %v", f.replies)
	}
}

func TestStatusCommand_Errors(t *testing.T) {
	f := &fakeAPI{permsErr: errors.New("boom")}
	b, _ := newTestBot(f)
	b.onMessage(command(".status", false))
	if len(f.replies) != 1 || f.replies[0] != replyFailed {
		t.Fatalf("want generic failure reply, got %v", f.replies)
	}

	f = &fakeAPI{perms: discordgo.PermissionAdministrator}
	b, _ = newTestBot(f)
	b.OnStatus(func(context.Context, string, string) error { return errors.New("stopped") })
	b.onMessage(command(".status", false))
	if len(f.replies) != 1 || f.replies[0] != replyFailed {
		t.Fatalf("want generic failure reply, got %v", f.replies)
	}
}

func TestStatusCommand_Ignored(t *testing.T) {
	f := &fakeAPI{perms: discordgo.PermissionAdministrator}
	b, calls := newTestBot(f)

	b.onMessage(command(".status", true))    // bots
	b.onMessage(command("!status", false))   // other prefix
	b.onMessage(command(".statuses", false)) // other command
	dm := command(".status", false)
	dm.GuildID = ""
	b.onMessage(dm)

	if len(*calls) != 0 || len(f.replies) != 0 {
		t.Fatalf("want nothing, got calls=%v replies=%v", *calls, f.replies)
	}
}

func TestMapErr(t *testing.T) {
	unknown := &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMessage}}
	notFound := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}
	forbidden := &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusForbidden},
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeMissingPermissions},
	}

	if !errors.Is(mapErr(unknown), notify.ErrMessageNotFound) {
		t.Fatalf("unknown message should map to not found")
	}
	if !errors.Is(mapErr(notFound), notify.ErrMessageNotFound) {
		t.Fatalf("404 should map to not found")
	}
	if errors.Is(mapErr(forbidden), notify.ErrMessageNotFound) {
		t.Fatalf("403 must stay a plain failure")
	}
	if mapErr(nil) != nil {
		t.Fatalf("nil stays nil")
	}
}

func TestPlatform_FetchVanishedThenSend(t *testing.T) {
	f := &fakeAPI{getErr: &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMessage}}}
	b, _ := newTestBot(f)
	u := notify.NewUpserter(b, zap.NewNop())
	d := &notify.Destination{GuildID: "g1", ChannelID: "c1", MessageID: "old"}

	id, err := u.Upsert(context.Background(), d, render.Presentation{Color: render.Green})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if id != "m1" || len(f.sent) != 1 || len(f.edited) != 0 {
		t.Fatalf("want a fresh send, id=%q sent=%d edited=%d", id, len(f.sent), len(f.edited))
	}
}

func TestEmbed(t *testing.T) {
	now := time.Unix(1700000000, 0)
	p := render.Presentation{
		Color:       render.Yellow,
		WebEmoji:    "🔴",
		AppEmoji:    "🟡",
		WebText:     "Offline",
		AppText:     "Care",
		UptimeText:  "Web 50.00% · App 75.00% · 2 minutes tracked",
		ProgressBar: "██████░░░░",
	}
	e := Embed(config.DefaultDisplay, p, now)

	if e.Color != colorYellow {
		t.Fatalf("color: got %#x", e.Color)
	}
	if !strings.Contains(e.Description, "<t:1700000000:R>") {
		t.Fatalf("description: %q", e.Description)
	}
	if len(e.Fields) != 3 || e.Fields[0].Value != "🔴 **Offline**" || e.Fields[1].Value != "🟡 **Care**" {
		t.Fatalf("fields: %+v", e.Fields)
	}
	if !strings.Contains(e.Fields[2].Value, p.ProgressBar) {
		t.Fatalf("uptime field missing bar: %q", e.Fields[2].Value)
	}
	if e.Footer == nil || e.Footer.Text != config.DefaultDisplay.Footer {
		t.Fatalf("footer: %+v", e.Footer)
	}
	if e.Timestamp != "2023-11-14T22:13:20Z" {
		t.Fatalf("timestamp: %q", e.Timestamp)
	}
	if embedColor(render.Green) != colorGreen || embedColor(render.Red) != colorRed {
		t.Fatalf("color mapping wrong")
	}
}
