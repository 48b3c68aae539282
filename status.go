package discordpod

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// reporter keeps the placeholder message in the thread up to date while a run
// is in flight: elapsed time, skipped attachments, accumulated cost and queue
// length. It edits in place every interval and once more on stop.
type reporter struct {
	thread    *Thread
	messageID string
	interval  time.Duration
	started   time.Time
	queued    func() int
	logger    *slog.Logger

	mu      sync.Mutex
	ignored []string
	cost    float64
	hasCost bool

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func newReporter(thread *Thread, messageID string, queued func() int, logger *slog.Logger) *reporter {
	return &reporter{
		thread:    thread,
		messageID: messageID,
		interval:  time.Second,
		started:   time.Now(),
		queued:    queued,
		logger:    logger,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (r *reporter) addIgnored(filenames []string) {
	r.mu.Lock()
	r.ignored = append(r.ignored, filenames...)
	r.mu.Unlock()
}

func (r *reporter) addCost(details CostDetails) {
	r.mu.Lock()
	r.cost += details.TotalCost
	r.hasCost = true
	r.mu.Unlock()
}

func (r *reporter) run() {
	defer close(r.done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.edit(r.build(false))
		case <-r.stop:
			r.edit(r.build(true))
			return
		}
	}
}

// Stop triggers the final edit and waits for it to complete.
func (r *reporter) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
	<-r.done
}

func (r *reporter) edit(content string) {
	if err := r.thread.Edit(r.messageID, content); err != nil {
		r.logger.Error("Error updating status message", "error", err)
	}
}

func (r *reporter) build(done bool) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	if len(r.ignored) > 0 {
		fmt.Fprintf(&b, "warning: ignoring following attachments due to invalid type: %s\n", strings.Join(r.ignored, ", "))
	}
	verb := "working"
	if done {
		verb = "worked"
	}
	fmt.Fprintf(&b, "info: %s for %ds", verb, int(time.Since(r.started).Seconds()))
	if r.hasCost {
		fmt.Fprintf(&b, "\ninfo: cost $%.6f", r.cost)
	}
	if n := r.queued(); n > 0 {
		fmt.Fprintf(&b, "\ninfo: %d queued messages", n)
	}
	return b.String()
}
