package document

import (
	"fmt"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFTextExtractor reads the PDF text layer using ledongthuc/pdf.
type PDFTextExtractor struct{}

func (PDFTextExtractor) ExtractText(path string) ([]string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	texts := make([]string, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A broken text layer on one page is not fatal; the page
			// is still usable as image-only input.
			continue
		}
		texts[i-1] = text
	}
	return texts, nil
}
