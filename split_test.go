package discordpod

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitMessageShortText(t *testing.T) {
	chunks := SplitMessage("hello", 2000)
	if len(chunks) != 1 || chunks[0] != "hello" {
		t.Errorf("SplitMessage = %v, want [hello]", chunks)
	}
}

func TestSplitMessageEmpty(t *testing.T) {
	if chunks := SplitMessage("   ", 2000); chunks != nil {
		t.Errorf("SplitMessage on whitespace = %v, want nil", chunks)
	}
}

func TestSplitMessagePrefersParagraphs(t *testing.T) {
	text := strings.Repeat("a", 30) + "\n\n" + strings.Repeat("b", 30)
	chunks := SplitMessage(text, 40)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2: %v", len(chunks), chunks)
	}
	if chunks[0] != strings.Repeat("a", 30) || chunks[1] != strings.Repeat("b", 30) {
		t.Errorf("chunks split mid-paragraph: %v", chunks)
	}
}

func TestSplitMessageMergesSmallPieces(t *testing.T) {
	chunks := SplitMessage("one two three four", 9)
	want := []string{"one two", "three", "four"}
	if len(chunks) != len(want) {
		t.Fatalf("got %v, want %v", chunks, want)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i], want[i])
		}
	}
}

func TestSplitMessageHardSplitsLongWords(t *testing.T) {
	chunks := SplitMessage(strings.Repeat("x", 25), 10)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for _, chunk := range chunks {
		if utf8.RuneCountInString(chunk) > 10 {
			t.Errorf("chunk %q exceeds limit", chunk)
		}
	}
}

func TestSplitMessageAllChunksWithinLimit(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString("第一句话是中文的。This sentence mixes English and 中文 content for the splitter.\n")
		if i%7 == 0 {
			b.WriteString("\n")
		}
	}
	chunks := SplitMessage(b.String(), MaxMessageLen)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if utf8.RuneCountInString(chunk) > MaxMessageLen {
			t.Errorf("chunk %d has %d runes, exceeds %d", i, utf8.RuneCountInString(chunk), MaxMessageLen)
		}
		if chunk == "" {
			t.Errorf("chunk %d is empty", i)
		}
	}
}
