package discordpod

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageLen is Discord's per-message character limit.
const MaxMessageLen = 2000

var splitSeparators = []string{"\n\n", "\n", " "}

// SplitMessage breaks text into chunks of at most limit characters, preferring
// paragraph breaks over line breaks over word breaks. Only when a single word
// exceeds the limit is it cut mid-word.
func SplitMessage(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	for _, sep := range splitSeparators {
		pieces := strings.Split(text, sep)
		if len(pieces) == 1 {
			continue
		}
		return mergePieces(pieces, sep, limit)
	}
	return hardSplit(text, limit)
}

// mergePieces greedily packs pieces back together with sep, keeping each chunk
// within limit. Oversized pieces are split again on the next separator down.
func mergePieces(pieces []string, sep string, limit int) []string {
	var chunks []string
	var current string

	flush := func() {
		current = strings.TrimSpace(current)
		if current != "" {
			chunks = append(chunks, current)
		}
		current = ""
	}

	for _, piece := range pieces {
		if utf8.RuneCountInString(piece) > limit {
			flush()
			chunks = append(chunks, SplitMessage(piece, limit)...)
			continue
		}
		switch {
		case current == "":
			current = piece
		case utf8.RuneCountInString(current)+utf8.RuneCountInString(sep)+utf8.RuneCountInString(piece) <= limit:
			current += sep + piece
		default:
			flush()
			current = piece
		}
	}
	flush()
	return chunks
}

func hardSplit(text string, limit int) []string {
	var chunks []string
	runes := []rune(text)
	for len(runes) > 0 {
		n := limit
		if n > len(runes) {
			n = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[:n]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		runes = runes[n:]
	}
	return chunks
}
