package discordpod

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Gateway is the minimal surface of the chat client the pod needs. A live
// implementation wraps a discordgo session; tests supply fakes.
type Gateway interface {
	// BotID returns the bot's own user ID, used to strip self-mentions.
	BotID() string

	// StartThread creates a public reply thread on a message and returns it.
	StartThread(channelID, messageID, title string) (*Thread, error)

	// Thread resolves an existing thread channel by ID.
	Thread(channelID string) (*Thread, error)

	// Send posts content into a channel and returns the new message ID.
	Send(channelID, content string) (string, error)

	// Edit replaces the content of a previously sent message.
	Edit(channelID, messageID, content string) error

	// React adds an emoji reaction to a message.
	React(channelID, messageID, emoji string) error

	// Typing triggers the typing indicator in a channel.
	Typing(channelID string) error
}

// Thread is a borrowed reference to an active reply thread. It is handed to
// the agent inside the Context so tools and instructions can message the
// thread directly.
type Thread struct {
	ID       string
	Name     string
	ParentID string

	gw Gateway
}

// Send posts content into the thread and returns the new message ID.
func (t *Thread) Send(content string) (string, error) {
	return t.gw.Send(t.ID, content)
}

// Edit replaces the content of a message previously sent into the thread.
func (t *Thread) Edit(messageID, content string) error {
	return t.gw.Edit(t.ID, messageID, content)
}

// Typing triggers the typing indicator in the thread.
func (t *Thread) Typing() error {
	return t.gw.Typing(t.ID)
}

// discordGateway adapts a discordgo session to the Gateway interface.
type discordGateway struct {
	session *discordgo.Session
}

var _ Gateway = &discordGateway{}

// NewDiscordGateway wraps an open discordgo session. Most callers go through
// Pod.Register instead.
func NewDiscordGateway(session *discordgo.Session) Gateway {
	return &discordGateway{session: session}
}

func (g *discordGateway) BotID() string {
	if g.session.State != nil && g.session.State.User != nil {
		return g.session.State.User.ID
	}
	return ""
}

func (g *discordGateway) StartThread(channelID, messageID, title string) (*Thread, error) {
	ch, err := g.session.MessageThreadStartComplex(channelID, messageID, &discordgo.ThreadStart{
		Name:                title,
		AutoArchiveDuration: 60, // archive after 1 hour
		Type:                discordgo.ChannelTypeGuildPublicThread,
	})
	if err != nil {
		return nil, fmt.Errorf("start thread on message %s: %w", messageID, err)
	}
	return &Thread{ID: ch.ID, Name: ch.Name, ParentID: ch.ParentID, gw: g}, nil
}

func (g *discordGateway) Thread(channelID string) (*Thread, error) {
	ch, err := g.session.State.Channel(channelID)
	if err != nil {
		ch, err = g.session.Channel(channelID)
		if err != nil {
			return nil, fmt.Errorf("resolve thread %s: %w", channelID, err)
		}
	}
	if !ch.IsThread() {
		return nil, fmt.Errorf("channel %s is not a thread", channelID)
	}
	return &Thread{ID: ch.ID, Name: ch.Name, ParentID: ch.ParentID, gw: g}, nil
}

func (g *discordGateway) Send(channelID, content string) (string, error) {
	msg, err := g.session.ChannelMessageSend(channelID, content)
	if err != nil {
		return "", fmt.Errorf("send to %s: %w", channelID, err)
	}
	return msg.ID, nil
}

func (g *discordGateway) Edit(channelID, messageID, content string) error {
	if _, err := g.session.ChannelMessageEdit(channelID, messageID, content); err != nil {
		return fmt.Errorf("edit message %s: %w", messageID, err)
	}
	return nil
}

func (g *discordGateway) React(channelID, messageID, emoji string) error {
	if err := g.session.MessageReactionAdd(channelID, messageID, emoji); err != nil {
		return fmt.Errorf("react to message %s: %w", messageID, err)
	}
	return nil
}

func (g *discordGateway) Typing(channelID string) error {
	return g.session.ChannelTyping(channelID)
}

func fromDiscordMessage(m *discordgo.MessageCreate) *Message {
	msg := &Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.Bot = m.Author.Bot
	}
	for _, a := range m.Attachments {
		msg.Attachments = append(msg.Attachments, Attachment{
			ID:          a.ID,
			Filename:    a.Filename,
			ContentType: a.ContentType,
			URL:         a.URL,
		})
	}
	return msg
}
