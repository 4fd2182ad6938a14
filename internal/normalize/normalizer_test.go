package normalize

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanwise/invoice-extractor/internal/models"
	"github.com/scanwise/invoice-extractor/internal/pipeline"
	"github.com/scanwise/invoice-extractor/pkg/logger"
)

type nopTracker struct{ paths []string }

func (n *nopTracker) Track(path string) { n.paths = append(n.paths, path) }

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestNormalizePassesImagesThrough(t *testing.T) {
	n := NewNormalizer(200, logger.NewTestLogger())
	upload := &models.UploadRequest{Data: pngBytes(t), Filename: "bill.png"}

	pages, err := n.Normalize(context.Background(), upload, t.TempDir(), &nopTracker{})
	require.NoError(t, err)

	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Index)
	assert.NotNil(t, pages[0].Image)
	assert.Empty(t, pages[0].Path, "pass-through pages are not written to disk")
}

func TestNormalizeRejectsCorruptImage(t *testing.T) {
	n := NewNormalizer(200, logger.NewTestLogger())
	upload := &models.UploadRequest{Data: []byte("definitely not an image"), Filename: "bill.jpg"}

	_, err := n.Normalize(context.Background(), upload, t.TempDir(), &nopTracker{})
	assert.Equal(t, pipeline.ReasonCorruptDocument, pipeline.ReasonOf(err))
}

func TestNormalizeRejectsCorruptPDF(t *testing.T) {
	n := NewNormalizer(200, logger.NewTestLogger())
	upload := &models.UploadRequest{Data: []byte("%PDF-1.4 truncated garbage"), Filename: "bill.pdf"}

	_, err := n.Normalize(context.Background(), upload, t.TempDir(), &nopTracker{})
	require.Error(t, err)
	// MuPDF sometimes repairs damaged files into an empty document instead of
	// refusing them outright; both outcomes reject the upload.
	reason := pipeline.ReasonOf(err)
	assert.True(t, pipeline.Rejectable(reason), "got reason %q", reason)
}
