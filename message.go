package discordpod

import (
	"encoding/json"
	"fmt"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one exchange half in a thread's conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// History is the ordered conversation state persisted per thread. It grows by
// two turns per successful exchange and is never pruned by the pod itself.
type History []Turn

// EncodeHistory serializes a history into the blob stored in the KV store.
func EncodeHistory(h History) ([]byte, error) {
	data, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	return data, nil
}

// DecodeHistory parses a stored blob back into a History.
func DecodeHistory(data []byte) (History, error) {
	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return h, nil
}

// Message is the gateway-independent view of an incoming chat message.
type Message struct {
	ID          string
	ChannelID   string
	AuthorID    string
	Content     string
	Bot         bool
	Attachments []Attachment
}

// Attachment describes a file attached to an incoming message. Data is filled
// in lazily, only for media types the agent can consume.
type Attachment struct {
	ID          string
	Filename    string
	ContentType string
	URL         string
}

// ContentPart is a single piece of user input handed to the agent: either
// text or a binary blob with its media type.
type ContentPart struct {
	Text      string
	Data      []byte
	MediaType string
}

// Media types forwarded to the agent. Anything else is skipped and reported
// in the thread's status message.
var (
	ImageMediaTypes = []string{
		"image/avif",
		"image/bmp",
		"image/gif",
		"image/jpeg",
		"image/png",
		"image/svg+xml",
		"image/webp",
	}

	// Only formats the chat completions input_audio content part accepts.
	AudioMediaTypes = []string{
		"audio/mpeg",
		"audio/wav",
	}

	DocumentMediaTypes = []string{
		"application/pdf",
	}
)

func supportedMediaType(contentType string) bool {
	for _, group := range [][]string{ImageMediaTypes, AudioMediaTypes, DocumentMediaTypes} {
		for _, t := range group {
			if contentType == t {
				return true
			}
		}
	}
	return false
}
