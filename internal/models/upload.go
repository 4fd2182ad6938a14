package models

import (
	"image"
	"path/filepath"
	"strconv"
	"strings"
)

// UploadRequest carries the raw upload through the pipeline. It is built once
// at request ingress and never mutated.
type UploadRequest struct {
	Data        []byte
	Filename    string
	ContentType string
	Size        int64
}

// Ext returns the lower-cased filename extension including the dot.
func (u *UploadRequest) Ext() string {
	return strings.ToLower(filepath.Ext(u.Filename))
}

// IsPDF reports whether the upload is a PDF by extension or declared MIME type.
func (u *UploadRequest) IsPDF() bool {
	return u.Ext() == ".pdf" || strings.EqualFold(u.ContentType, "application/pdf")
}

// PageImage is one rasterized page. Path points at the rendered PNG inside
// the request workspace; the janitor owns its removal.
type PageImage struct {
	Index int // 1-based page number
	Image image.Image
	Path  string
}

// PageText pairs a page number with the text recognized on it.
type PageText struct {
	Index int
	Text  string
}

// ExtractedText is the ordered per-page OCR output.
type ExtractedText struct {
	Pages []PageText
}

// Full concatenates page texts in page order using the same separator the
// upstream prompt was tuned against.
func (t *ExtractedText) Full() string {
	var b strings.Builder
	for i, p := range t.Pages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("----- Page ")
		b.WriteString(strconv.Itoa(p.Index))
		b.WriteString(" -----\n")
		b.WriteString(p.Text)
	}
	return b.String()
}

// HasText reports whether any page produced non-blank text.
func (t *ExtractedText) HasText() bool {
	for _, p := range t.Pages {
		if strings.TrimSpace(p.Text) != "" {
			return true
		}
	}
	return false
}
