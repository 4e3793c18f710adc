// Package engine orchestrates loading, payload construction and the
// provider call for PDF queries.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/pdfquery/internal/document"
	"github.com/dgallion1/pdfquery/internal/payload"
	"github.com/dgallion1/pdfquery/internal/provider"
)

// Independent PDF sources load in parallel; the payload still follows
// caller path order.
const maxConcurrentLoads = 4

// ProviderError indicates the transport call failed or the provider
// returned a malformed response. Not retried here.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider: %s", e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// DocumentLoader loads a PDF into an in-memory Document.
type DocumentLoader interface {
	Load(path string, opts document.Options) (*document.Document, error)
}

// CompletionClient submits a chat-completions request.
type CompletionClient interface {
	CreateChatCompletion(ctx context.Context, req payload.Request) (*provider.ChatResponse, error)
}

// Config is the read-only engine configuration, shared across calls.
type Config struct {
	Model       string
	MaxTokens   int
	Temperature float64

	SystemPrompt     string
	IncludeTextLayer bool
	ImageDetail      payload.ImageDetail

	DPI         int
	ImageFormat document.ImageFormat

	// Verbose echoes the outgoing payload (base64 truncated) to the log.
	Verbose bool
}

// Engine answers questions about PDF documents using a vision-capable
// completions API. Safe for concurrent use: every call builds its own
// documents and context builder.
type Engine struct {
	cfg    Config
	loader DocumentLoader
	client CompletionClient
	log    *slog.Logger
}

func New(cfg Config, loader DocumentLoader, client CompletionClient, log *slog.Logger) *Engine {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	return &Engine{cfg: cfg, loader: loader, client: client, log: log}
}

// Query loads a single PDF and asks one question about it.
func (e *Engine) Query(ctx context.Context, pdfPath, question string) (*Result, error) {
	doc, err := e.loader.Load(pdfPath, e.loadOptions())
	if err != nil {
		return nil, err
	}
	return e.QueryDocument(ctx, doc, question)
}

// QueryMultiple loads each path into its own document and asks one
// question across all of them. A failure on any path aborts the call.
func (e *Engine) QueryMultiple(ctx context.Context, pdfPaths []string, question string) (*Result, error) {
	docs, err := e.loadAll(pdfPaths)
	if err != nil {
		return nil, err
	}

	builder, err := e.newBuilder()
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		e.addDocument(builder, doc)
	}
	return e.run(ctx, builder, question)
}

// QueryDocument asks a question about an already loaded document.
func (e *Engine) QueryDocument(ctx context.Context, doc *document.Document, question string) (*Result, error) {
	builder, err := e.newBuilder()
	if err != nil {
		return nil, err
	}
	e.addDocument(builder, doc)
	return e.run(ctx, builder, question)
}

// loadAll loads every path with bounded concurrency, preserving the
// caller's order in the returned slice.
func (e *Engine) loadAll(paths []string) ([]*document.Document, error) {
	type loadResult struct {
		idx int
		doc *document.Document
		err error
	}
	results := make(chan loadResult, len(paths))
	sem := make(chan struct{}, maxConcurrentLoads)

	for i, path := range paths {
		sem <- struct{}{}
		go func(i int, path string) {
			defer func() { <-sem }()
			doc, err := e.loader.Load(path, e.loadOptions())
			results <- loadResult{idx: i, doc: doc, err: err}
		}(i, path)
	}

	docs := make([]*document.Document, len(paths))
	var firstErr error
	for range paths {
		r := <-results
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		docs[r.idx] = r.doc
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return docs, nil
}

func (e *Engine) loadOptions() document.Options {
	return document.Options{DPI: e.cfg.DPI, Format: e.cfg.ImageFormat}
}

func (e *Engine) newBuilder() (*payload.Builder, error) {
	return payload.NewBuilder(payload.Options{
		SystemPrompt:     e.cfg.SystemPrompt,
		IncludeTextLayer: e.cfg.IncludeTextLayer,
		ImageDetail:      e.cfg.ImageDetail,
	})
}

func (e *Engine) addDocument(builder *payload.Builder, doc *document.Document) {
	if doc.PageCount() == 0 {
		e.log.Warn("document has no pages", "source", doc.Source)
	}
	builder.AddDocument(doc)
}

func (e *Engine) run(ctx context.Context, builder *payload.Builder, question string) (*Result, error) {
	req, err := builder.Request(question, e.cfg.Model, e.cfg.MaxTokens, e.cfg.Temperature)
	if err != nil {
		return nil, err
	}

	if e.cfg.Verbose {
		e.logPayload(req)
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, &ProviderError{Err: err}
	}
	return normalize(resp)
}

// normalize converts a parsed provider response into a Result. Missing
// usage counters stay zero; unrecognized stop reasons map to other.
func normalize(resp *provider.ChatResponse) (*Result, error) {
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Err: errors.New("response has no completion choices")}
	}
	choice := resp.Choices[0]
	return &Result{
		Answer: choice.Message.Content,
		Model:  resp.Model,
		Usage: map[string]int{
			"prompt_tokens":     resp.Usage.PromptTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
			"total_tokens":      resp.Usage.TotalTokens,
		},
		FinishReason: NormalizeFinishReason(choice.FinishReason),
		Raw:          resp.Raw,
	}, nil
}

// logPayload echoes the outgoing request with base64 image data cut
// down to a recognizable prefix.
func (e *Engine) logPayload(req payload.Request) {
	preview := req
	preview.Messages = make([]payload.Message, len(req.Messages))
	for i, msg := range req.Messages {
		preview.Messages[i] = msg
		parts, ok := msg.Content.([]payload.ContentPart)
		if !ok {
			continue
		}
		truncated := make([]payload.ContentPart, len(parts))
		for j, part := range parts {
			if part.Type == payload.PartImage && len(part.ImageB64) > 32 {
				part.ImageB64 = part.ImageB64[:32] + "...[truncated]"
			}
			truncated[j] = part
		}
		preview.Messages[i].Content = truncated
	}

	body, err := json.Marshal(preview)
	if err != nil {
		e.log.Warn("payload preview failed", "error", err)
		return
	}
	e.log.Info("request payload", "payload", string(body))
}
