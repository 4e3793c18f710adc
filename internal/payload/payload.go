// Package payload builds multimodal chat-completion payloads from
// loaded PDF documents, in the OpenAI-compatible wire format.
package payload

import "encoding/json"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ImageDetail is the provider hint controlling image resolution cost.
type ImageDetail string

const (
	DetailLow  ImageDetail = "low"
	DetailHigh ImageDetail = "high"
	DetailAuto ImageDetail = "auto"
)

// Valid reports whether d is one of the three recognized levels.
func (d ImageDetail) Valid() bool {
	return d == DetailLow || d == DetailHigh || d == DetailAuto
}

// PartType tags a ContentPart variant.
type PartType string

const (
	PartText  PartType = "text"
	PartImage PartType = "image"
)

// ContentPart is the atomic unit of a user message: a text fragment or
// a base64-embedded image.
type ContentPart struct {
	Type      PartType
	Text      string      // PartText only
	ImageB64  string      // PartImage only: base64 payload without the data: prefix
	MediaType string      // PartImage only, e.g. "image/png"
	Detail    ImageDetail // PartImage only
}

// TextPart builds a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: PartText, Text: text}
}

// ImagePart builds an image content part from already-encoded base64 data.
func ImagePart(b64, mediaType string, detail ImageDetail) ContentPart {
	return ContentPart{Type: PartImage, ImageB64: b64, MediaType: mediaType, Detail: detail}
}

type textPartWire struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type imageURLWire struct {
	URL    string `json:"url"`
	Detail string `json:"detail"`
}

type imagePartWire struct {
	Type     string       `json:"type"`
	ImageURL imageURLWire `json:"image_url"`
}

// MarshalJSON emits the OpenAI chat-completions multimodal schema:
// {"type":"text","text":...} or
// {"type":"image_url","image_url":{"url":"data:<mime>;base64,<data>","detail":...}}.
func (p ContentPart) MarshalJSON() ([]byte, error) {
	if p.Type == PartImage {
		return json.Marshal(imagePartWire{
			Type: "image_url",
			ImageURL: imageURLWire{
				URL:    "data:" + p.MediaType + ";base64," + p.ImageB64,
				Detail: string(p.Detail),
			},
		})
	}
	return json.Marshal(textPartWire{Type: "text", Text: p.Text})
}

// Message is one chat message. Content is a plain string for system
// messages and an ordered []ContentPart for user messages.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// Request is the complete chat-completions request body.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}
