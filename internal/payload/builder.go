package payload

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/dgallion1/pdfquery/internal/document"
)

// ErrEmptyContext is returned when a payload is requested before any
// document has been added.
var ErrEmptyContext = errors.New("no documents added to context")

// Options configures the context builder. The zero value is not useful;
// start from DefaultOptions.
type Options struct {
	SystemPrompt     string
	IncludeTextLayer bool
	ImageDetail      ImageDetail
}

// DefaultOptions returns the builder defaults: the citation system
// prompt, text layer included, high image detail.
func DefaultOptions() Options {
	return Options{
		SystemPrompt:     DefaultSystemPrompt,
		IncludeTextLayer: true,
		ImageDetail:      DetailHigh,
	}
}

type docEntry struct {
	doc         *document.Document
	displayName string
}

// Builder accumulates documents and formats them into request payloads
// and message histories. Documents are append-only; the formatting
// methods are pure reads over the accumulated set.
type Builder struct {
	opts       Options
	docs       []docEntry
	nameCounts map[string]int
}

// NewBuilder validates opts and returns a Builder. An unrecognized
// image detail is rejected here rather than at request time.
func NewBuilder(opts Options) (*Builder, error) {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	if opts.ImageDetail == "" {
		opts.ImageDetail = DetailHigh
	}
	if !opts.ImageDetail.Valid() {
		return nil, fmt.Errorf("invalid image detail %q: must be low, high or auto", opts.ImageDetail)
	}
	return &Builder{
		opts:       opts,
		nameCounts: make(map[string]int),
	}, nil
}

// AddDocument appends a document. Insertion order is preserved and no
// deduplication happens: adding the same document twice duplicates its
// pages in the output. Repeated source names get a numeric suffix so
// citations can still tell the copies apart.
func (b *Builder) AddDocument(doc *document.Document) *Builder {
	base := doc.Source
	b.nameCounts[base]++
	name := base
	if n := b.nameCounts[base]; n > 1 {
		name = fmt.Sprintf("%s (%d)", base, n)
	}
	b.docs = append(b.docs, docEntry{doc: doc, displayName: name})
	return b
}

// DocumentCount returns the number of documents added so far.
func (b *Builder) DocumentCount() int {
	return len(b.docs)
}

// ContentParts builds the ordered part sequence for the user message.
// Per document in insertion order, per page in page order: a label
// part anchoring citations (always), the extracted text (when the text
// layer is enabled and the page has text), and the rendered page
// image. The question text closes the sequence.
func (b *Builder) ContentParts(question string) []ContentPart {
	var parts []ContentPart
	for _, e := range b.docs {
		mediaType := e.doc.Render.Format.MediaType()
		for i := range e.doc.Pages {
			page := &e.doc.Pages[i]
			parts = append(parts, TextPart(fmt.Sprintf("Page %d from %s:", page.Number, e.displayName)))
			if b.opts.IncludeTextLayer && page.HasText {
				parts = append(parts, TextPart(page.Text))
			}
			b64 := base64.StdEncoding.EncodeToString(page.Image)
			parts = append(parts, ImagePart(b64, mediaType, b.opts.ImageDetail))
		}
	}
	parts = append(parts, TextPart("\n\nQuestion: "+question))
	return parts
}

// MessageHistory builds the system + user message pair. The result is
// shaped for reuse as seed history by a conversational framework; an
// empty question is permitted for that case.
func (b *Builder) MessageHistory(question string) ([]Message, error) {
	if len(b.docs) == 0 {
		return nil, ErrEmptyContext
	}
	return []Message{
		{Role: RoleSystem, Content: b.opts.SystemPrompt},
		{Role: RoleUser, Content: b.ContentParts(question)},
	}, nil
}

// Request builds the complete chat-completions request body.
func (b *Builder) Request(question, model string, maxTokens int, temperature float64) (Request, error) {
	messages, err := b.MessageHistory(question)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}, nil
}
