package discordpod

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

func TestThreadTitleTruncation(t *testing.T) {
	short := "how do i say goodbye?"
	if got := threadTitle(short); got != short {
		t.Errorf("threadTitle(short) = %q", got)
	}

	long := strings.Repeat("问", 150)
	got := threadTitle(long)
	if utf8.RuneCountInString(got) != 100 {
		t.Errorf("truncated title has %d runes, want 100", utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated title missing ellipsis: %q", got)
	}
}

func TestStripMention(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"<@bot-1> hello", "hello"},
		{"<@!bot-1> hello", "hello"},
		{"hello <@bot-1>", "hello"},
		{"<@bot-1>", ""},
		{"plain", "plain"},
		{"<@someone-else> hi", "<@someone-else> hi"},
	}
	for _, tt := range tests {
		if got := stripMention(tt.content, "bot-1"); got != tt.want {
			t.Errorf("stripMention(%q) = %q, want %q", tt.content, got, tt.want)
		}
	}
}

func TestFromDiscordMessage(t *testing.T) {
	m := &discordgo.MessageCreate{
		Message: &discordgo.Message{
			ID:        "m1",
			ChannelID: "c1",
			Content:   "hello",
			Author:    &discordgo.User{ID: "alice", Bot: false},
			Attachments: []*discordgo.MessageAttachment{
				{ID: "a1", Filename: "photo.png", ContentType: "image/png", URL: "https://cdn.example/photo.png"},
			},
		},
	}

	msg := fromDiscordMessage(m)
	if msg.ID != "m1" || msg.ChannelID != "c1" || msg.AuthorID != "alice" || msg.Bot {
		t.Errorf("unexpected message: %+v", msg)
	}
	if len(msg.Attachments) != 1 || msg.Attachments[0].ContentType != "image/png" {
		t.Errorf("unexpected attachments: %+v", msg.Attachments)
	}
}
