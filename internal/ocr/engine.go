package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Engine recognizes text on a single page image. The production engine is
// Tesseract; tests inject stubs.
type Engine interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// TesseractEngine runs gosseract over a lightly preprocessed image. A fresh
// client is created per call because gosseract clients are not safe for
// concurrent use.
type TesseractEngine struct {
	languages []string
}

func NewTesseractEngine(languages []string) *TesseractEngine {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &TesseractEngine{languages: languages}
}

func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(strings.Join(e.languages, "+")); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	processed := preprocess(img)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, processed, &jpeg.Options{Quality: 100}); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to get text: %w", err)
	}
	return text, nil
}

// preprocess applies the two transforms that reliably help receipt scans:
// grayscale and a mild contrast boost.
func preprocess(img image.Image) image.Image {
	out := imaging.Grayscale(img)
	return imaging.AdjustContrast(out, 20)
}
