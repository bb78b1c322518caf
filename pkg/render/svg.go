// Package render turns computed frames into SVG documents.
//
// Two entry points: RenderSVG renders one frame as a standalone document
// (CLI exports, HTTP snapshots), and Canvas is a retained scene.Surface for
// continuous rendering, re-serialized on demand.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/pointscape/pkg/density"
	"github.com/matzehuels/pointscape/pkg/scene"
)

// Card geometry in screen pixels, before the counter-scale.
const (
	cardWidth  = 120.0
	cardHeight = 90.0
	cardRadius = 6.0
)

const backgroundColor = "#14120e"

// clusterPalette colors markers by cluster id; noise points get the last
// entry.
var clusterPalette = []string{
	"#d98c4a", "#7fa8c9", "#9fbf6b", "#c97fa8",
	"#b8a15e", "#6bbfae", "#a88cd9", "#c96b6b",
}

const noiseColor = "#57534a"

var contourPalette = []string{
	"#262219", "#2e2a1f", "#373226", "#403a2c", "#494233", "#524a39",
}

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width, height float64
	background    string
}

// WithViewport sets the document dimensions. Defaults to 1280x800.
func WithViewport(width, height float64) SVGOption {
	return func(r *svgRenderer) { r.width, r.height = width, height }
}

// WithBackground overrides the background fill.
func WithBackground(color string) SVGOption {
	return func(r *svgRenderer) { r.background = color }
}

// RenderSVG serializes one frame as a standalone SVG document.
func RenderSVG(f *scene.Frame, opts ...SVGOption) []byte {
	r := svgRenderer{width: 1280, height: 800, background: backgroundColor}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		r.width, r.height, r.width, r.height)
	fmt.Fprintf(&buf, "  <rect width=\"100%%\" height=\"100%%\" fill=\"%s\"/>\n", r.background)

	renderContours(&buf, f)
	renderMarkers(&buf, f.Markers)
	renderItemLabels(&buf, f.ItemLabels)
	renderCards(&buf, f.Cards)
	renderLabels(&buf, f)
	renderIndicator(&buf, f.Indicator, r.width)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// renderContours draws the terrain as one group. Contour paths are stored
// in base screen space; the group carries the viewport transform so paths
// are serialized untouched.
func renderContours(buf *bytes.Buffer, f *scene.Frame) {
	if len(f.Contours) == 0 || f.ContourOpacity <= 0 {
		return
	}
	t := f.Transform
	fmt.Fprintf(buf, "  <g class=\"terrain\" opacity=\"%.3f\" transform=\"translate(%.2f %.2f) scale(%.4f)\" fill=\"none\">\n",
		f.ContourOpacity, t.TranslateX, t.TranslateY, t.Scale)
	for _, c := range f.Contours {
		fmt.Fprintf(buf, "    <path d=\"%s\" stroke=\"%s\" stroke-width=\"%.2f\"/>\n",
			contourPath(c), contourColor(c.Level), 1.5/t.Scale)
	}
	buf.WriteString("  </g>\n")
}

func contourPath(c density.Contour) string {
	var b strings.Builder
	for i, p := range c.Path {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&b, "%s%.2f %.2f", cmd, p.X, p.Y)
	}
	return b.String()
}

func contourColor(level int) string {
	if level < 0 || level >= len(contourPalette) {
		return contourPalette[len(contourPalette)-1]
	}
	return contourPalette[level]
}

func renderMarkers(buf *bytes.Buffer, markers []scene.MarkerState) {
	if len(markers) == 0 {
		return
	}
	buf.WriteString("  <g class=\"markers\">\n")
	for _, m := range markers {
		fmt.Fprintf(buf, "    <circle id=\"marker-%s\" cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"%s\" opacity=\"%.3f\"/>\n",
			escape(m.ID), m.Pos.X, m.Pos.Y, m.Radius, markerColor(m.Cluster), m.Opacity)
	}
	buf.WriteString("  </g>\n")
}

func markerColor(cluster int) string {
	if cluster < 0 {
		return noiseColor
	}
	return clusterPalette[cluster%len(clusterPalette)]
}

// renderItemLabels draws the middle crossfade layer: one short title per
// item, offset just below its marker.
func renderItemLabels(buf *bytes.Buffer, states []scene.ItemLabelState) {
	if len(states) == 0 {
		return
	}
	buf.WriteString("  <g class=\"item-labels\" text-anchor=\"middle\" font-size=\"7\" fill=\"#8f897c\">\n")
	for _, s := range states {
		fmt.Fprintf(buf, "    <text id=\"item-label-%s\" x=\"%.2f\" y=\"%.2f\" opacity=\"%.3f\">%s</text>\n",
			escape(s.ID), s.Pos.X, s.Pos.Y+10, s.Opacity, escape(s.Text))
	}
	buf.WriteString("  </g>\n")
}

func renderCards(buf *bytes.Buffer, cards []scene.CardState) {
	if len(cards) == 0 {
		return
	}
	buf.WriteString("  <g class=\"cards\">\n")
	for _, c := range cards {
		renderCard(buf, c)
	}
	buf.WriteString("  </g>\n")
}

func renderCard(buf *bytes.Buffer, c scene.CardState) {
	fmt.Fprintf(buf, "    <g id=\"card-%s\" transform=\"translate(%.2f %.2f) scale(%.4f)\" opacity=\"%.3f\">\n",
		escape(c.ID), c.Pos.X, c.Pos.Y, c.Scale, c.Opacity)
	fmt.Fprintf(buf, "      <clipPath id=\"%s\"><rect x=\"%.1f\" y=\"%.1f\" width=\"%.1f\" height=\"%.1f\" rx=\"%.1f\"/></clipPath>\n",
		escape(c.ClipID), -cardWidth/2, -cardHeight/2, cardWidth, cardHeight, cardRadius)
	fmt.Fprintf(buf, "      <rect x=\"%.1f\" y=\"%.1f\" width=\"%.1f\" height=\"%.1f\" rx=\"%.1f\" fill=\"#1f1c16\" stroke=\"#3a352b\"/>\n",
		-cardWidth/2, -cardHeight/2, cardWidth, cardHeight, cardRadius)

	if c.Warm && c.Content != "" && c.Snippet == "" {
		fmt.Fprintf(buf, "      <image href=\"%s\" x=\"%.1f\" y=\"%.1f\" width=\"%.1f\" height=\"%.1f\" clip-path=\"url(#%s)\" preserveAspectRatio=\"xMidYMid slice\"/>\n",
			escape(c.Content), -cardWidth/2, -cardHeight/2, cardWidth, cardHeight, escape(c.ClipID))
	}
	if c.Snippet != "" {
		fmt.Fprintf(buf, "      <text x=\"%.1f\" y=\"%.1f\" font-size=\"8\" fill=\"#c9c3b6\" clip-path=\"url(#%s)\">%s</text>\n",
			-cardWidth/2+8, -cardHeight/2+24, escape(c.ClipID), escape(c.Snippet))
	}
	fmt.Fprintf(buf, "      <text x=\"%.1f\" y=\"%.1f\" font-size=\"9\" font-weight=\"600\" fill=\"#e8e4da\">%s</text>\n",
		-cardWidth/2+8, cardHeight/2-8, escape(c.Title))
	buf.WriteString("    </g>\n")
}

func renderLabels(buf *bytes.Buffer, f *scene.Frame) {
	if len(f.Labels) == 0 {
		return
	}
	buf.WriteString("  <g class=\"labels\" text-anchor=\"middle\">\n")
	for _, p := range f.Labels {
		s := p.Style
		shadow := ""
		if s.Shadow > 0 {
			shadow = fmt.Sprintf(" paint-order=\"stroke\" stroke=\"%s\" stroke-width=\"3\" stroke-opacity=\"%.3f\"",
				backgroundColor, s.Shadow)
		}
		fmt.Fprintf(buf, "    <text x=\"%.2f\" y=\"%.2f\" font-size=\"%.1f\" font-weight=\"%.0f\" letter-spacing=\"%.1f\" fill=\"%s\" opacity=\"%.3f\"%s>%s</text>\n",
			p.Anchor.X, p.Anchor.Y, s.FontSize, s.Weight, s.LetterSpacing, s.Fill, s.Opacity, shadow, escape(p.Text))
	}
	buf.WriteString("  </g>\n")
}

func renderIndicator(buf *bytes.Buffer, text string, width float64) {
	if text == "" {
		return
	}
	fmt.Fprintf(buf, "  <text class=\"indicator\" x=\"%.1f\" y=\"28\" text-anchor=\"middle\" font-size=\"13\" fill=\"#a39c8d\">%s</text>\n",
		width/2, escape(text))
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return escaper.Replace(s) }
