package dataset

import (
	"sort"
	"strings"
)

const (
	keywordSampleItems = 10  // items sampled per cluster
	keywordSampleChars = 500 // preview prefix considered per item
	keywordCount       = 3   // keywords kept per cluster
	keywordMinLen      = 4   // shorter words are noise
)

// stopwords filtered out of keyword extraction.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`the a an and or but in on at to for
		of with by from is are was were be been being have has had do does
		did will would could should may might must shall can this that
		these those i you he she it we they what which who when where why
		how all each every both few more most other some such no not only
		same so than too very just also now here there then if as because
		until while about into through during before after above below`) {
		stopwords[w] = struct{}{}
	}
}

// clusterKeywords extracts the most common meaningful words from the text
// previews of a cluster's members. Cheap by construction: a bounded sample
// of items and characters, simple whitespace tokenization, and a stopword
// filter.
func (d *Dataset) clusterKeywords(clusterID int) []string {
	counts := map[string]int{}
	order := map[string]int{} // first-seen order for deterministic ties

	sampled := 0
	for i := range d.Items {
		if d.Items[i].ClusterID != clusterID {
			continue
		}
		text := d.Items[i].Preview
		if text == "" {
			text = d.Items[i].FullText
		}
		if text == "" {
			continue
		}
		if len(text) > keywordSampleChars {
			text = text[:keywordSampleChars]
		}

		for _, w := range strings.Fields(strings.ToLower(text)) {
			w = strings.Trim(w, `.,!?()[]{}":;-_#*`)
			if len(w) < keywordMinLen || !isAlpha(w) {
				continue
			}
			if _, stop := stopwords[w]; stop {
				continue
			}
			if _, seen := order[w]; !seen {
				order[w] = len(order)
			}
			counts[w]++
		}

		sampled++
		if sampled >= keywordSampleItems {
			break
		}
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(a, b int) bool {
		if counts[words[a]] != counts[words[b]] {
			return counts[words[a]] > counts[words[b]]
		}
		return order[words[a]] < order[words[b]]
	})

	if len(words) > keywordCount {
		words = words[:keywordCount]
	}
	return words
}

func joinKeywords(words []string) string {
	return strings.Join(words, " ")
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return len(s) > 0
}
