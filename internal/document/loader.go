package document

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Pages shorter than this after trimming are treated as image-only.
// Filters out pages whose only text is a page number or stray whitespace.
const hasTextThreshold = 8

// SourceError indicates the input is not a readable, valid PDF.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("unreadable pdf %s: %s", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// RenderError indicates the rasterizer failed to produce an image for
// some page. The whole load fails; partial documents are never returned.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %s", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// PageImage is one rendered page as produced by a Rasterizer.
type PageImage struct {
	Data   []byte
	Width  int
	Height int
}

// TextExtractor pulls the text layer from a PDF, one string per page
// in physical order. A page with no text layer yields an empty string.
type TextExtractor interface {
	ExtractText(path string) ([]string, error)
}

// Rasterizer renders every page of a PDF to an encoded raster image.
type Rasterizer interface {
	Rasterize(path string, dpi int, format ImageFormat) ([]PageImage, error)
}

// Loader builds Documents from PDF files.
type Loader struct {
	extractor  TextExtractor
	rasterizer Rasterizer
}

func NewLoader(extractor TextExtractor, rasterizer Rasterizer) *Loader {
	return &Loader{extractor: extractor, rasterizer: rasterizer}
}

// Load reads the PDF at path and returns a fully rendered Document.
// Rendering is all-or-nothing: a single page failure aborts the load.
func (l *Loader) Load(path string, opts Options) (*Document, error) {
	if opts.DPI <= 0 {
		opts.DPI = 150
	}
	if opts.Format == "" {
		opts.Format = FormatPNG
	}
	if !opts.Format.Valid() {
		return nil, &SourceError{Path: path, Err: fmt.Errorf("unsupported image format %q", opts.Format)}
	}

	texts, err := l.extractor.ExtractText(path)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}

	images, err := l.rasterizer.Rasterize(path, opts.DPI, opts.Format)
	if err != nil {
		return nil, &RenderError{Path: path, Err: err}
	}

	// The image count is authoritative: every page must carry exactly
	// one rendered image. A short text layer is padded with empty text.
	pages := make([]Page, 0, len(images))
	for i, img := range images {
		var text string
		if i < len(texts) {
			text = texts[i]
		}
		pages = append(pages, Page{
			Number:  i + 1,
			Text:    text,
			HasText: len(strings.TrimSpace(text)) > hasTextThreshold,
			Image:   img.Data,
			Width:   img.Width,
			Height:  img.Height,
		})
	}

	return &Document{
		Source: filepath.Base(path),
		Pages:  pages,
		Render: opts,
	}, nil
}
