package discordpod

import (
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestReporterFinalEdit(t *testing.T) {
	gw := newFakeGateway("bot-1")
	thread, _ := gw.StartThread("channel", "m0", "t")
	statusID, _ := thread.Send("starting...")

	var queued atomic.Int64
	queued.Store(2)
	rep := newReporter(thread, statusID, func() int { return int(queued.Load()) }, slog.Default())
	rep.interval = 5 * time.Millisecond
	go rep.run()

	rep.addIgnored([]string{"notes.zip"})
	rep.addCost(CostDetails{TotalCost: 0.000123})
	time.Sleep(25 * time.Millisecond)
	rep.Stop()

	content := gw.messageContent(thread.ID, statusID)
	if !strings.Contains(content, "worked for") {
		t.Errorf("final status missing completion line: %q", content)
	}
	if !strings.Contains(content, "notes.zip") {
		t.Errorf("final status missing ignored attachments: %q", content)
	}
	if !strings.Contains(content, "cost $") {
		t.Errorf("final status missing cost: %q", content)
	}
	if !strings.Contains(content, "2 queued messages") {
		t.Errorf("final status missing queue length: %q", content)
	}
}

func TestReporterStopIsIdempotent(t *testing.T) {
	gw := newFakeGateway("bot-1")
	thread, _ := gw.StartThread("channel", "m0", "t")
	statusID, _ := thread.Send("starting...")

	rep := newReporter(thread, statusID, func() int { return 0 }, slog.Default())
	rep.interval = time.Millisecond
	go rep.run()

	rep.Stop()
	rep.Stop()
}
