package scene

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/pointscape/pkg/dataset"
	"github.com/matzehuels/pointscape/pkg/geom"
	"github.com/matzehuels/pointscape/pkg/layout"
)

const snippetLen = 120

// CardCacheEntry holds everything about a card that does not change with
// zoom: its relaxed base screen position, a stable clip identifier, and
// precomputed title/snippet strings. Built once per dataset (and per
// resize), consumed every frame, discarded on reload.
type CardCacheEntry struct {
	ID      string
	BasePos geom.Point
	ClipID  string
	Title   string
	Snippet string
	Content string // image path or document source
	Cluster int
}

// BuildCardCache computes card cache entries: item positions go through
// the one-shot relaxation pass in data space, then through the scales into
// base screen space.
func BuildCardCache(d *dataset.Dataset, scales *geom.Scales) []CardCacheEntry {
	pts := d.Positions()
	offsets := layout.Relax(pts, layout.Options{Text: d.IsText()})

	entries := make([]CardCacheEntry, len(d.Items))
	for i := range d.Items {
		it := &d.Items[i]
		relaxed := geom.Point{X: pts[i].X + offsets[i].X, Y: pts[i].Y + offsets[i].Y}
		entries[i] = CardCacheEntry{
			ID:      it.ID,
			BasePos: scales.ToScreen(relaxed),
			ClipID:  fmt.Sprintf("clip-%s", it.ID),
			Title:   cardTitle(it),
			Snippet: cardSnippet(it),
			Content: it.Content,
			Cluster: it.ClusterID,
		}
	}
	return entries
}

// cardTitle derives a short display title from the item content reference.
func cardTitle(it *dataset.Item) string {
	base := filepath.Base(it.Content)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	if base == "" || base == "." {
		return it.ID
	}
	return base
}

// cardSnippet derives the text preview shown on document cards.
func cardSnippet(it *dataset.Item) string {
	text := it.Preview
	if text == "" {
		text = it.FullText
	}
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > snippetLen {
		// Back off to a rune boundary so the cut never splits a
		// multi-byte sequence.
		cut := snippetLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "…"
	}
	return text
}
