// Package discordpod connects a Discord gateway session to an LLM agent: it
// routes qualifying messages into reply threads, feeds the agent the thread's
// persisted conversation history, posts the result back and saves the updated
// history to a key-value store.
package discordpod

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// RespondFunc decides whether an incoming message (bot filtered, mention
// stripped) warrants a response. A nil RespondFunc accepts everything.
type RespondFunc func(m *Message) bool

// Options configures a Pod.
type Options struct {
	// TriggerChannelID is the channel where new messages spawn reply threads.
	// Messages elsewhere only get a response inside threads the pod created.
	TriggerChannelID string

	// Store persists thread ownership and conversation history. Required.
	Store Store

	// Respond optionally narrows which messages get a response.
	Respond RespondFunc

	// HTTPClient downloads message attachments. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Pod wires an Agent into a Discord session. It is generic over the shared
// application data type handed to the agent inside each Context.
type Pod[D any] struct {
	agent    Agent[D]
	users    Store // thread ID -> owning user ID
	contents Store // thread ID -> serialized History
	trigger  string
	respond  RespondFunc
	http     *http.Client
	logger   *slog.Logger

	data atomic.Pointer[D]

	mu     sync.Mutex
	queues map[string][]*Message // active thread ID -> pending messages
}

// NewPod constructs a Pod with the given agent, initial shared data and
// options.
func NewPod[D any](agent Agent[D], initial D, opts Options) (*Pod[D], error) {
	if agent == nil {
		return nil, errors.New("pod: agent is required")
	}
	if opts.Store == nil {
		return nil, errors.New("pod: store is required")
	}
	if opts.TriggerChannelID == "" {
		return nil, errors.New("pod: trigger channel ID is required")
	}

	users, err := opts.Store.Namespace("user")
	if err != nil {
		return nil, fmt.Errorf("pod: user namespace: %w", err)
	}
	contents, err := opts.Store.Namespace("contents")
	if err != nil {
		return nil, fmt.Errorf("pod: contents namespace: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pod[D]{
		agent:    agent,
		users:    users,
		contents: contents,
		trigger:  opts.TriggerChannelID,
		respond:  opts.Respond,
		http:     httpClient,
		logger:   logger.With("pod", uuid.NewString()),
		queues:   make(map[string][]*Message),
	}
	p.data.Store(&initial)
	return p, nil
}

// UpdateData atomically replaces the shared application data used in
// subsequently constructed Contexts. In-flight runs keep the value they
// started with.
func (p *Pod[D]) UpdateData(data D) {
	p.data.Store(&data)
}

// Data returns the current shared application data.
func (p *Pod[D]) Data() D {
	return *p.data.Load()
}

// Register attaches the message handler to the session. Once registered,
// every qualifying message create event triggers the respond flow.
func (p *Pod[D]) Register(session *discordgo.Session) {
	gw := NewDiscordGateway(session)
	session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		go p.HandleMessage(context.Background(), gw, fromDiscordMessage(m))
	})
}

// HandleMessage runs the full respond flow for one incoming message. It is
// exposed so callers can drive the pod from their own event source.
func (p *Pod[D]) HandleMessage(ctx context.Context, gw Gateway, m *Message) {
	if m.Bot {
		return
	}
	m.Content = stripMention(m.Content, gw.BotID())
	if m.Content == "" {
		return
	}
	if p.respond != nil && !p.respond(m) {
		return
	}

	thread, err := p.resolveThread(gw, m)
	if err != nil {
		p.logger.Error("Error resolving thread", "channel", m.ChannelID, "error", err)
		return
	}
	if thread == nil {
		return
	}

	p.mu.Lock()
	if pending, active := p.queues[thread.ID]; active {
		p.queues[thread.ID] = append(pending, m)
		p.mu.Unlock()
		p.logger.Info("Queued message behind active run", "thread", thread.ID)
		return
	}
	p.queues[thread.ID] = []*Message{}
	p.mu.Unlock()

	p.respondLoop(ctx, thread, m)
}

// resolveThread maps the message to its reply thread. Messages in the trigger
// channel spawn a new thread owned by the author; messages elsewhere must be
// inside a thread the pod created, from its owner. Rejected messages get a 🚧
// reaction and a nil thread.
func (p *Pod[D]) resolveThread(gw Gateway, m *Message) (*Thread, error) {
	if m.ChannelID == p.trigger {
		thread, err := gw.StartThread(m.ChannelID, m.ID, threadTitle(m.Content))
		if err != nil {
			return nil, err
		}
		if err := p.users.Set(thread.ID, []byte(m.AuthorID)); err != nil {
			return nil, fmt.Errorf("record thread owner: %w", err)
		}
		return thread, nil
	}

	owner, err := p.users.Get(m.ChannelID)
	if errors.Is(err, ErrKeyNotFound) {
		p.logger.Info("Message outside a known thread", "channel", m.ChannelID)
		p.react(gw, m)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("look up thread owner: %w", err)
	}
	if string(owner) != m.AuthorID {
		p.logger.Info("Message from a non-owner", "thread", m.ChannelID, "author", m.AuthorID)
		p.react(gw, m)
		return nil, nil
	}
	thread, err := gw.Thread(m.ChannelID)
	if err != nil {
		p.react(gw, m)
		return nil, err
	}
	return thread, nil
}

func (p *Pod[D]) react(gw Gateway, m *Message) {
	if err := gw.React(m.ChannelID, m.ID, "🚧"); err != nil {
		p.logger.Error("Error adding reaction", "message", m.ID, "error", err)
	}
}

// respondLoop drives the exchanges for one thread: the triggering message
// first, then whatever queued up behind it while the agent was running. The
// queue entry is removed under the same lock as the final emptiness check;
// deleting it any later would let a concurrent HandleMessage append to an
// entry this loop never reads again.
func (p *Pod[D]) respondLoop(ctx context.Context, thread *Thread, first *Message) {
	runID, err := gonanoid.New()
	if err != nil {
		runID = first.ID
	}
	logger := p.logger.With("thread", thread.ID, "run", runID)

	statusID, err := thread.Send("starting...")
	if err != nil {
		logger.Error("Error sending status message", "error", err)
		p.mu.Lock()
		delete(p.queues, thread.ID)
		p.mu.Unlock()
		return
	}

	rep := newReporter(thread, statusID, func() int {
		p.mu.Lock()
		defer p.mu.Unlock()
		return len(p.queues[thread.ID])
	}, logger)
	go rep.run()
	defer rep.Stop()

	history := p.loadHistory(thread.ID, logger)

	current := first
	for {
		p.handleExchange(ctx, thread, current, &history, rep, logger)

		p.mu.Lock()
		pending := p.queues[thread.ID]
		if len(pending) == 0 {
			delete(p.queues, thread.ID)
			p.mu.Unlock()
			return
		}
		current = pending[0]
		p.queues[thread.ID] = pending[1:]
		p.mu.Unlock()
	}
}

// handleExchange runs the agent once and delivers the result. History is
// persisted after the turns are appended; a reply that was already sent is
// never rolled back when persistence fails.
func (p *Pod[D]) handleExchange(ctx context.Context, thread *Thread, m *Message, history *History, rep *reporter, logger *slog.Logger) {
	input, ignored := p.contentParts(ctx, m, logger)
	rep.addIgnored(ignored)

	if err := thread.Typing(); err != nil {
		logger.Error("Error triggering typing indicator", "error", err)
	}

	c := &Context[D]{Data: p.Data(), Thread: thread, Trigger: m}
	result, err := p.agent.Run(ctx, c, *history, input)
	if err != nil {
		logger.Error("Error running agent", "error", err)
		return
	}

	for _, chunk := range SplitMessage(result.Output, MaxMessageLen) {
		if _, err := thread.Send(chunk); err != nil {
			logger.Error("Error sending reply chunk", "error", err)
		}
	}

	*history = append(*history, Turn{Role: RoleUser, Content: m.Content}, Turn{Role: RoleAssistant, Content: result.Output})
	if result.Cost != nil {
		rep.addCost(*result.Cost)
	}
	p.saveHistory(thread.ID, *history, logger)
}

// loadHistory returns the thread's persisted history. Absent or malformed
// entries start the thread over with an empty history.
func (p *Pod[D]) loadHistory(threadID string, logger *slog.Logger) History {
	blob, err := p.contents.Get(threadID)
	if errors.Is(err, ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		logger.Error("Error loading history", "error", err)
		return nil
	}
	history, err := DecodeHistory(blob)
	if err != nil {
		logger.Error("Stored history is malformed, starting over", "error", err)
		return nil
	}
	return history
}

func (p *Pod[D]) saveHistory(threadID string, history History, logger *slog.Logger) {
	blob, err := EncodeHistory(history)
	if err != nil {
		logger.Error("Error encoding history", "error", err)
		return
	}
	if err := p.contents.Set(threadID, blob); err != nil {
		logger.Error("Error persisting history", "error", err)
	}
}

// contentParts builds the agent input from the message text and any
// attachments with a supported media type. Skipped attachment filenames are
// returned for the status message.
func (p *Pod[D]) contentParts(ctx context.Context, m *Message, logger *slog.Logger) ([]ContentPart, []string) {
	text := m.Content
	if text == "" {
		text = "[No text provided by user]"
	}
	parts := []ContentPart{{Text: text}}

	var ignored []string
	for _, a := range m.Attachments {
		if !supportedMediaType(a.ContentType) {
			ignored = append(ignored, a.Filename)
			continue
		}
		data, err := p.fetchAttachment(ctx, a.URL)
		if err != nil {
			logger.Error("Error downloading attachment", "filename", a.Filename, "error", err)
			ignored = append(ignored, a.Filename)
			continue
		}
		parts = append(parts, ContentPart{Data: data, MediaType: a.ContentType})
	}
	return parts, ignored
}

func (p *Pod[D]) fetchAttachment(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// stripMention removes the bot's own mention from the content, in both plain
// and nickname forms.
func stripMention(content, botID string) string {
	if botID != "" {
		content = strings.ReplaceAll(content, "<@"+botID+">", "")
		content = strings.ReplaceAll(content, "<@!"+botID+">", "")
	}
	return strings.TrimSpace(content)
}

// threadTitle derives a thread name from the message, truncated to Discord's
// 100-character channel name limit.
func threadTitle(content string) string {
	runes := []rune(content)
	if len(runes) < 100 {
		return content
	}
	return string(runes[:97]) + "..."
}
