package discordpod

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// fakeGateway implements Gateway in memory for tests.
type fakeGateway struct {
	mu        sync.Mutex
	botID     string
	threads   map[string]*Thread
	messages  map[string]string // "channel/message" -> content
	sent      []sentMessage
	reactions []string
	nextID    int

	// onEdit, when set before use, is invoked after each edit outside the
	// gateway lock.
	onEdit func(channelID, messageID, content string)
}

type sentMessage struct {
	ChannelID string
	Content   string
	ID        string
}

func newFakeGateway(botID string) *fakeGateway {
	return &fakeGateway{
		botID:    botID,
		threads:  make(map[string]*Thread),
		messages: make(map[string]string),
	}
}

func (g *fakeGateway) BotID() string { return g.botID }

func (g *fakeGateway) StartThread(channelID, messageID, title string) (*Thread, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	thread := &Thread{
		ID:       fmt.Sprintf("thread-%d", g.nextID),
		Name:     title,
		ParentID: channelID,
		gw:       g,
	}
	g.threads[thread.ID] = thread
	return thread, nil
}

func (g *fakeGateway) Thread(channelID string) (*Thread, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	thread, ok := g.threads[channelID]
	if !ok {
		return nil, fmt.Errorf("thread %s not found", channelID)
	}
	return thread, nil
}

func (g *fakeGateway) Send(channelID, content string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	id := fmt.Sprintf("msg-%d", g.nextID)
	g.sent = append(g.sent, sentMessage{ChannelID: channelID, Content: content, ID: id})
	g.messages[channelID+"/"+id] = content
	return id, nil
}

func (g *fakeGateway) Edit(channelID, messageID, content string) error {
	g.mu.Lock()
	key := channelID + "/" + messageID
	if _, ok := g.messages[key]; !ok {
		g.mu.Unlock()
		return fmt.Errorf("message %s not found", key)
	}
	g.messages[key] = content
	hook := g.onEdit
	g.mu.Unlock()
	if hook != nil {
		hook(channelID, messageID, content)
	}
	return nil
}

func (g *fakeGateway) React(channelID, messageID, emoji string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reactions = append(g.reactions, channelID+"/"+messageID+"/"+emoji)
	return nil
}

func (g *fakeGateway) Typing(channelID string) error { return nil }

// sentTo returns the non-status messages posted into a channel.
func (g *fakeGateway) sentTo(channelID string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, m := range g.sent {
		if m.ChannelID == channelID && m.Content != "starting..." {
			out = append(out, m.Content)
		}
	}
	return out
}

func (g *fakeGateway) reactionCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.reactions)
}

// statusContent returns the current content of the first status message
// posted into a channel, after any edits.
func (g *fakeGateway) statusContent(channelID string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, m := range g.sent {
		if m.ChannelID == channelID && m.Content == "starting..." {
			return g.messages[channelID+"/"+m.ID]
		}
	}
	return ""
}

func (g *fakeGateway) messageContent(channelID, messageID string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.messages[channelID+"/"+messageID]
}

// fakeAgent implements Agent for tests, recording each call.
type fakeAgent struct {
	mu     sync.Mutex
	calls  []agentCall
	output string
	err    error

	// When set, Run blocks until the channel is closed.
	gate chan struct{}
}

type agentCall struct {
	Data    string
	History History
	Input   []ContentPart
	Thread  string
}

func (a *fakeAgent) Run(ctx context.Context, c *Context[string], history History, input []ContentPart) (*RunResult, error) {
	a.mu.Lock()
	snapshot := make(History, len(history))
	copy(snapshot, history)
	a.calls = append(a.calls, agentCall{
		Data:    c.Data,
		History: snapshot,
		Input:   input,
		Thread:  c.Thread.ID,
	})
	gate := a.gate
	output := a.output
	err := a.err
	a.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if output == "" {
		output = "ok"
	}
	return &RunResult{Output: output}, nil
}

func (a *fakeAgent) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

func (a *fakeAgent) call(i int) agentCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[i]
}

func userText(input []ContentPart) string {
	var parts []string
	for _, p := range input {
		if p.Data == nil {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, " ")
}
