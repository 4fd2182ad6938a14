package ocr

import (
	"context"
	"fmt"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanwise/invoice-extractor/internal/models"
	"github.com/scanwise/invoice-extractor/internal/pipeline"
	"github.com/scanwise/invoice-extractor/pkg/logger"
)

// pageMarker encodes the page number in the image width so the stub engine
// can tell pages apart without real pixels.
func pageMarker(n int) image.Image {
	return image.NewGray(image.Rect(0, 0, n, 1))
}

func markedPages(n int) []models.PageImage {
	pages := make([]models.PageImage, n)
	for i := 0; i < n; i++ {
		pages[i] = models.PageImage{Index: i + 1, Image: pageMarker(i + 1)}
	}
	return pages
}

// stubEngine returns scripted text per page and can delay pages so that
// completion order differs from page order.
type stubEngine struct {
	texts   map[int]string
	fail    map[int]bool
	reverse bool // later pages finish first
}

func (e *stubEngine) Recognize(_ context.Context, img image.Image) (string, error) {
	page := img.Bounds().Dx()
	if e.reverse {
		time.Sleep(time.Duration(10-page) * 5 * time.Millisecond)
	}
	if e.fail[page] {
		return "", fmt.Errorf("engine failure on page %d", page)
	}
	return e.texts[page], nil
}

func TestExtractAssemblesPagesInOrder(t *testing.T) {
	engine := &stubEngine{
		texts:   map[int]string{1: "first", 2: "second", 3: "third"},
		reverse: true,
	}
	e := NewExtractor(engine, 4, false, logger.NewTestLogger())

	text, err := e.Extract(context.Background(), markedPages(3))
	require.NoError(t, err)

	require.Len(t, text.Pages, 3)
	assert.Equal(t, "first", text.Pages[0].Text)
	assert.Equal(t, "second", text.Pages[1].Text)
	assert.Equal(t, "third", text.Pages[2].Text)
	assert.Equal(t,
		"----- Page 1 -----\nfirst\n----- Page 2 -----\nsecond\n----- Page 3 -----\nthird",
		text.Full())
}

func TestExtractOrderIsStableAcrossCompletionOrders(t *testing.T) {
	texts := map[int]string{1: "a", 2: "b", 3: "c", 4: "d", 5: "e"}

	var outputs []string
	for _, reverse := range []bool{false, true} {
		engine := &stubEngine{texts: texts, reverse: reverse}
		e := NewExtractor(engine, 2, false, logger.NewTestLogger())
		text, err := e.Extract(context.Background(), markedPages(5))
		require.NoError(t, err)
		outputs = append(outputs, text.Full())
	}
	assert.Equal(t, outputs[0], outputs[1])
}

func TestExtractToleratesSinglePageFailure(t *testing.T) {
	engine := &stubEngine{
		texts: map[int]string{1: "first", 3: "third"},
		fail:  map[int]bool{2: true},
	}
	log := logger.NewTestLogger()
	e := NewExtractor(engine, 4, false, log)

	text, err := e.Extract(context.Background(), markedPages(3))
	require.NoError(t, err)

	assert.Equal(t, "first", text.Pages[0].Text)
	assert.Equal(t, "", text.Pages[1].Text, "failed page contributes empty text")
	assert.Equal(t, "third", text.Pages[2].Text)

	var warned bool
	for _, entry := range log.Entries() {
		if entry.Level == "WARN" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestExtractStrictModeFailsOnAnyPage(t *testing.T) {
	engine := &stubEngine{
		texts: map[int]string{1: "first", 3: "third"},
		fail:  map[int]bool{2: true},
	}
	e := NewExtractor(engine, 4, true, logger.NewTestLogger())

	_, err := e.Extract(context.Background(), markedPages(3))
	assert.Equal(t, pipeline.ReasonEnginePageFailure, pipeline.ReasonOf(err))
}

func TestExtractFailsWhenAllPagesFail(t *testing.T) {
	engine := &stubEngine{
		fail: map[int]bool{1: true, 2: true, 3: true},
	}
	e := NewExtractor(engine, 4, false, logger.NewTestLogger())

	_, err := e.Extract(context.Background(), markedPages(3))
	assert.Equal(t, pipeline.ReasonEnginePageFailure, pipeline.ReasonOf(err))
}

func TestExtractFailsWhenAllPagesBlank(t *testing.T) {
	engine := &stubEngine{
		texts: map[int]string{1: "", 2: "  \n ", 3: ""},
	}
	e := NewExtractor(engine, 4, false, logger.NewTestLogger())

	_, err := e.Extract(context.Background(), markedPages(3))
	assert.Equal(t, pipeline.ReasonNoTextFound, pipeline.ReasonOf(err))
}

func TestExtractRejectsEmptyPageList(t *testing.T) {
	e := NewExtractor(&stubEngine{}, 4, false, logger.NewTestLogger())

	_, err := e.Extract(context.Background(), nil)
	assert.Equal(t, pipeline.ReasonNoTextFound, pipeline.ReasonOf(err))
}
