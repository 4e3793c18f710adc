// Package render rasterizes PDF pages via MuPDF (go-fitz).
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/gen2brain/go-fitz"

	"github.com/dgallion1/pdfquery/internal/document"
)

const jpegQuality = 90

// FitzRasterizer implements document.Rasterizer using MuPDF.
type FitzRasterizer struct{}

func NewRasterizer() FitzRasterizer {
	return FitzRasterizer{}
}

// Rasterize renders every page of the PDF at path to encoded images.
// It fails on the first page that cannot be rendered.
func (FitzRasterizer) Rasterize(path string, dpi int, format document.ImageFormat) ([]document.PageImage, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	numPages := doc.NumPage()
	images := make([]document.PageImage, 0, numPages)
	for i := range numPages {
		img, err := doc.ImageDPI(i, float64(dpi))
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		data, err := encode(img, format)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		bounds := img.Bounds()
		images = append(images, document.PageImage{
			Data:   data,
			Width:  bounds.Dx(),
			Height: bounds.Dy(),
		})
	}
	return images, nil
}

func encode(img image.Image, format document.ImageFormat) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case document.FormatJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	default:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	}
	return buf.Bytes(), nil
}
