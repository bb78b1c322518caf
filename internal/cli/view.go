package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pointscape/pkg/dataset"
	"github.com/matzehuels/pointscape/pkg/engine"
	"github.com/matzehuels/pointscape/pkg/geom"
	"github.com/matzehuels/pointscape/pkg/imagecache"
	"github.com/matzehuels/pointscape/pkg/interact"
	"github.com/matzehuels/pointscape/pkg/scene"
)

// viewCommand creates the view command: an interactive terminal viewer for
// a dataset.
func (c *CLI) viewCommand() *cobra.Command {
	var configPath string
	var compact bool

	cmd := &cobra.Command{
		Use:   "view [dataset]",
		Short: "Explore a dataset interactively in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args[0], configPath, compact)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "engine config file (TOML)")
	cmd.Flags().BoolVar(&compact, "compact", false, "tighten label and card budgets")

	return cmd
}

func (c *CLI) runView(ctx context.Context, input, configPath string, compact bool) error {
	cfg, err := engine.LoadConfig(configPath)
	if err != nil {
		return err
	}
	// Terminal cells are coarse; always run the tightened budgets unless
	// overridden in the config file.
	cfg.Compact = cfg.Compact || compact

	d, err := c.loadDataset(ctx, input)
	if err != nil {
		return err
	}

	eng := engine.New(cfg, imagecache.FileLoader{Root: cfg.ImageRoot}, nil, c.Logger)
	if err := eng.Load(ctx, d); err != nil {
		return err
	}
	defer eng.Teardown()

	model := newViewModel(eng, d)
	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err = prog.Run()
	return err
}

// =============================================================================
// ViewModel - Interactive Map Viewer
// =============================================================================

// Engine ticks are driven by a bubbletea timer at roughly 30fps.
const viewTickInterval = 33 * time.Millisecond

// Cell-to-pixel factors: one terminal cell is a 2x4 braille micro-pixel
// block, so the engine's pixel space is the braille grid.
const (
	microPerCellX = 2
	microPerCellY = 4
)

type viewTickMsg time.Time

func viewTick() tea.Cmd {
	return tea.Tick(viewTickInterval, func(t time.Time) tea.Msg {
		return viewTickMsg(t)
	})
}

// viewModel is the bubbletea model wrapping a live engine. Key and mouse
// events feed the interaction controller; a timer drives engine ticks and
// the latest frame is rasterized onto a braille grid.
type viewModel struct {
	eng *engine.Engine
	ds  *dataset.Dataset

	frame *scene.Frame

	width  int // terminal cells
	height int
	mapW   int
	mapH   int

	helpVisible bool
	status      string

	clusterCursor int // next cluster for the zoom-to-cluster key
}

func newViewModel(eng *engine.Engine, d *dataset.Dataset) viewModel {
	return viewModel{
		eng:         eng,
		ds:          d,
		helpVisible: true,
		status:      fmt.Sprintf("%d items in %d clusters", len(d.Items), len(d.Clusters)),
	}
}

func (m viewModel) Init() tea.Cmd {
	return viewTick()
}

// center returns the viewport center in engine pixel coordinates.
func (m viewModel) center() geom.Point {
	return geom.Point{
		X: float64(m.mapW*microPerCellX) / 2,
		Y: float64(m.mapH*microPerCellY) / 2,
	}
}

// pan simulates a one-step drag gesture by the given pixel delta.
func (m *viewModel) pan(dx, dy float64) {
	c := m.center()
	m.eng.PointerDown(c, interact.ButtonPrimary, false)
	m.eng.PointerMove(geom.Point{X: c.X + dx, Y: c.Y + dy})
	m.eng.PointerUp()
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.mapW = maxInt(10, m.width)
		m.mapH = maxInt(4, m.height-3) // header + status + help
		m.eng.Resize(float64(m.mapW*microPerCellX), float64(m.mapH*microPerCellY))

	case viewTickMsg:
		if f := m.eng.Tick(); f != nil {
			m.frame = f
		}
		return m, viewTick()

	case tea.KeyMsg:
		const panStep = 3 * microPerCellY // pixels per keypress
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.pan(0, panStep)
		case "down", "j":
			m.pan(0, -panStep)
		case "left", "h":
			m.pan(panStep, 0)
		case "right", "l":
			m.pan(-panStep, 0)
		case "+", "=":
			m.eng.Wheel(-120, m.center(), false)
			m.status = fmt.Sprintf("zoom %.2fx", m.zoom())
		case "-", "_":
			m.eng.Wheel(120, m.center(), false)
			m.status = fmt.Sprintf("zoom %.2fx", m.zoom())
		case "f":
			m.eng.Controller().FitToData()
			m.eng.RequestRedraw()
			m.status = "fit view"
		case "c":
			if len(m.ds.Clusters) > 0 {
				cl := m.ds.Clusters[m.clusterCursor%len(m.ds.Clusters)]
				m.clusterCursor++
				if m.eng.ZoomToCluster(cl.ID) {
					m.status = "flying to " + cl.Label
				}
			}
		case "?":
			m.helpVisible = !m.helpVisible
		}

	case tea.MouseMsg:
		at := geom.Point{
			X: float64(msg.X * microPerCellX),
			Y: float64((msg.Y - 1) * microPerCellY), // header offset
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.eng.Wheel(-120, at, false)
		case tea.MouseButtonWheelDown:
			m.eng.Wheel(120, at, false)
		}
	}
	return m, nil
}

func (m viewModel) zoom() float64 {
	return m.eng.Controller().Transform().Scale
}

func (m viewModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	title := StyleTitle.Render(" pointscape ")
	if m.frame != nil && m.frame.Indicator != "" {
		title += StyleDim.Render(" · ") + StyleValue.Render(m.frame.Indicator)
	}
	header := lipgloss.NewStyle().Width(m.width).Render(title)

	mapView := m.renderMap()

	status := StyleDim.Render(fmt.Sprintf(" %s · zoom %.2fx", m.status, m.zoom()))
	help := ""
	if m.helpVisible {
		keys := []string{"↑↓←→ pan", "+/- zoom", "f fit", "c next cluster", "? help", "q quit"}
		help = StyleDim.Render("  " + strings.Join(keys, "  "))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, mapView, status, help)
}

// renderMap rasterizes the current frame onto a braille grid: contours as
// polylines, markers as single micro-pixels, labels and cards as cell-level
// text overlays.
func (m viewModel) renderMap() string {
	if m.frame == nil {
		return strings.Repeat("\n", m.mapH-1)
	}

	br := newBrailleBuf(m.mapW, m.mapH)
	f := m.frame
	tr := f.Transform

	if f.ContourOpacity > 0 {
		for _, c := range f.Contours {
			var prev *geom.Point
			for _, p := range c.Path {
				sp := tr.Apply(p)
				if prev != nil {
					br.drawLine(int(prev.X), int(prev.Y), int(sp.X), int(sp.Y))
				}
				prev = &sp
			}
		}
	}

	for _, mk := range f.Markers {
		if mk.Opacity > 0 {
			br.setPixel(int(mk.Pos.X), int(mk.Pos.Y))
		}
	}

	grid := br.toRunes()

	// Cards become single glyphs at their anchor cell.
	for _, card := range f.Cards {
		cx, cy := int(card.Pos.X)/microPerCellX, int(card.Pos.Y)/microPerCellY
		putRune(grid, cx, cy, '▣')
	}

	// Item labels and cluster labels overwrite cells; cluster labels come
	// last so they win contested cells.
	lines := make([]string, m.mapH)
	for y, row := range grid {
		lines[y] = string(row)
	}
	// Cells have no alpha, so the item label layer drops out once it has
	// mostly faded instead of rendering full-strength to the end.
	const itemLabelCells = 10
	for _, il := range f.ItemLabels {
		if il.Opacity < 0.3 {
			continue
		}
		text := []rune(il.Text)
		if len(text) > itemLabelCells {
			text = text[:itemLabelCells]
		}
		cx := int(il.Pos.X)/microPerCellX - len(text)/2
		cy := clampCell(int(il.Pos.Y)/microPerCellY+1, m.mapH)
		lines[cy] = overlayText(lines[cy], cx, string(text))
	}
	for _, pl := range f.Labels {
		cx := int(pl.Anchor.X)/microPerCellX - len(pl.Text)/2
		cy := clampCell(int(pl.Anchor.Y)/microPerCellY, m.mapH)
		lines[cy] = overlayText(lines[cy], cx, pl.Text)
	}

	return strings.Join(lines, "\n")
}

// overlayText writes text into a row of cells starting at cell x.
func overlayText(line string, x int, text string) string {
	row := []rune(line)
	for i, r := range text {
		pos := x + i
		if pos >= 0 && pos < len(row) {
			row[pos] = r
		}
	}
	return string(row)
}

func putRune(grid [][]rune, x, y int, r rune) {
	if y >= 0 && y < len(grid) && x >= 0 && x < len(grid[y]) {
		grid[y][x] = r
	}
}

func clampCell(v, n int) int {
	return minInt(maxInt(v, 0), n-1)
}

// =============================================================================
// Braille Rasterizer
// =============================================================================

// brailleBuf is a per-cell 8-bit dot mask over a 2x4 micro-pixel grid,
// rendered as braille runes.
type brailleBuf struct {
	w, h  int // cells
	masks [][]uint8
}

func newBrailleBuf(w, h int) *brailleBuf {
	masks := make([][]uint8, h)
	for i := range masks {
		masks[i] = make([]uint8, w)
	}
	return &brailleBuf{w: w, h: h, masks: masks}
}

// setPixel sets a micro-pixel at micro coordinates.
func (b *brailleBuf) setPixel(mx, my int) {
	if mx < 0 || my < 0 {
		return
	}
	cx, rx := mx/microPerCellX, mx%microPerCellX
	cy, ry := my/microPerCellY, my%microPerCellY
	if cy >= b.h || cx >= b.w {
		return
	}
	var bit uint8
	if rx == 0 {
		switch ry {
		case 0:
			bit = 0x01
		case 1:
			bit = 0x02
		case 2:
			bit = 0x04
		case 3:
			bit = 0x40
		}
	} else {
		switch ry {
		case 0:
			bit = 0x08
		case 1:
			bit = 0x10
		case 2:
			bit = 0x20
		case 3:
			bit = 0x80
		}
	}
	b.masks[cy][cx] |= bit
}

// drawLine draws a micro-pixel line using Bresenham.
func (b *brailleBuf) drawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setPixel(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// toRunes converts the mask grid to braille runes, space for empty cells.
func (b *brailleBuf) toRunes() [][]rune {
	out := make([][]rune, b.h)
	for y := 0; y < b.h; y++ {
		row := make([]rune, b.w)
		for x := 0; x < b.w; x++ {
			if mask := b.masks[y][x]; mask == 0 {
				row[x] = ' '
			} else {
				row[x] = rune(0x2800 + int(mask))
			}
		}
		out[y] = row
	}
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
