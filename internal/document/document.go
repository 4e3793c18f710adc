package document

import "fmt"

// ImageFormat is the encoding used for rendered page images.
type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatJPEG ImageFormat = "jpeg"
)

// MediaType returns the MIME type for the format.
func (f ImageFormat) MediaType() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Valid reports whether f is a supported image format.
func (f ImageFormat) Valid() bool {
	return f == FormatPNG || f == FormatJPEG
}

// Page holds the content extracted from a single PDF page.
type Page struct {
	Number  int    // 1-based, contiguous within a document
	Text    string // extracted text layer, possibly empty
	HasText bool   // true when the trimmed text is non-trivial
	Image   []byte // rendered raster image, encoded per the load options
	Width   int    // pixel width at render resolution
	Height  int    // pixel height at render resolution
}

// Options controls how a document is rendered at load time.
type Options struct {
	DPI    int
	Format ImageFormat
}

// Document is an immutable, fully loaded PDF: ordered pages with
// extracted text and rendered images.
type Document struct {
	Source string // base filename, used for citation labels
	Pages  []Page // physical page order, never reordered
	Render Options
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// GetPage returns a page by 1-based number.
func (d *Document) GetPage(n int) (*Page, error) {
	if n < 1 || n > len(d.Pages) {
		return nil, fmt.Errorf("page %d out of range: document has %d pages", n, len(d.Pages))
	}
	return &d.Pages[n-1], nil
}
