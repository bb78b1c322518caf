// Package engine ties the pieces together: it owns the per-dataset
// artifacts (scales, density field, spatial index, card cache), routes
// input through the interaction controller and the frame scheduler, and
// assembles the per-tick frame applied to the rendering surface.
//
// The engine is single-threaded by construction. The image loader is the
// only background goroutine; its completions are queued and drained on the
// engine tick, so every callback and every frame computation runs on the
// caller's goroutine.
package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pointscape/pkg/dataset"
	"github.com/matzehuels/pointscape/pkg/density"
	"github.com/matzehuels/pointscape/pkg/geom"
	"github.com/matzehuels/pointscape/pkg/imagecache"
	"github.com/matzehuels/pointscape/pkg/interact"
	"github.com/matzehuels/pointscape/pkg/labels"
	"github.com/matzehuels/pointscape/pkg/observability"
	"github.com/matzehuels/pointscape/pkg/scene"
	"github.com/matzehuels/pointscape/pkg/sched"
	"github.com/matzehuels/pointscape/pkg/spatial"
)

// marker is the static per-item marker record: raw (unrelaxed) base screen
// position plus identity and the short title shown as its item label.
type marker struct {
	id      string
	pos     geom.Point
	cluster int
	title   string
}

// Engine drives one loaded dataset.
type Engine struct {
	cfg    Config
	logger *log.Logger
	clock  sched.Clock

	ds     *dataset.Dataset
	scales *geom.Scales
	field  *density.Field
	index  *spatial.Index

	markers     []marker
	cards       []scene.CardCacheEntry
	cardByID    map[string]*scene.CardCacheEntry
	clusterBase map[int]geom.Point

	ctrl      *interact.Controller
	scheduler *sched.Scheduler
	renderer  *scene.Renderer

	images      *imagecache.Cache
	unsubImages func()
	loadCtx     context.Context

	// Sticky results of the throttled sub-updates, reused on ticks where
	// the sub-update is not due.
	labelSet     []labels.Placement
	cardIDs      []string
	indicator    string
	markerRadius float64
}

// New creates an engine. A nil loader disables image warming (every card
// stays skeletal), a nil clock uses time.Now, a nil logger uses the default
// logger.
func New(cfg Config, loader imagecache.Loader, clock sched.Clock, logger *log.Logger) *Engine {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = log.Default()
	}
	if loader == nil {
		loader = imagecache.LoaderFunc(func(ctx context.Context, src string) error {
			return fmt.Errorf("no image loader configured")
		})
	}
	return &Engine{
		cfg:    cfg,
		logger: logger,
		clock:  clock,
		images: imagecache.New(loader),
	}
}

// Load takes ownership of a dataset and builds every per-dataset artifact:
// scales, density field, spatial index over relaxed card positions, card
// cache and cluster anchors. An empty dataset loads fine and renders
// nothing.
//
// Load may be called again to replace the current dataset; the previous
// image subscription is dropped and the surface diff state is reset so the
// next frame recreates every node.
func (e *Engine) Load(ctx context.Context, d *dataset.Dataset) error {
	if d == nil {
		return fmt.Errorf("load: nil dataset")
	}
	start := e.clock()
	d.Finalize()

	e.ds = d
	e.loadCtx = ctx
	e.scales = geom.NewScales(geom.Extent(d.Positions()), e.cfg.Width, e.cfg.Height, e.cfg.Margin)
	e.rebuildGeometry()

	e.ctrl = interact.New(e.scales)
	e.scheduler = sched.New(e.clock)

	if e.unsubImages != nil {
		e.unsubImages()
	}
	e.unsubImages = e.images.Subscribe(func(string) { e.RequestRedraw() })

	if e.renderer != nil {
		e.renderer.Reset()
	}
	e.resetSticky()
	e.RequestRedraw()

	observability.Engine().OnDatasetLoad(len(d.Items), len(d.Clusters), e.clock().Sub(start))
	e.logger.Info("dataset loaded",
		"mode", d.Mode,
		"items", len(d.Items),
		"clusters", len(d.Clusters),
		"contours", len(e.field.Contours),
		"duration", e.clock().Sub(start))
	return nil
}

// rebuildGeometry recomputes everything derived from the current scales:
// marker base positions, the density field, the relaxed card cache and the
// spatial index over the relaxed positions.
func (e *Engine) rebuildGeometry() {
	d := e.ds

	e.markers = make([]marker, len(d.Items))
	basePts := make([]geom.Point, len(d.Items))
	for i := range d.Items {
		it := &d.Items[i]
		p := e.scales.ToScreen(it.Point())
		e.markers[i] = marker{id: it.ID, pos: p, cluster: it.ClusterID}
		basePts[i] = p
	}
	e.field = density.Build(basePts)

	e.cards = scene.BuildCardCache(d, e.scales)
	e.cardByID = make(map[string]*scene.CardCacheEntry, len(e.cards))
	entries := make([]spatial.Entry, len(e.cards))
	for i := range e.cards {
		c := &e.cards[i]
		e.cardByID[c.ID] = c
		entries[i] = spatial.Entry{ID: c.ID, Pos: c.BasePos}
		// Item labels reuse the card titles; both arrays parallel d.Items.
		e.markers[i].title = c.Title
	}
	e.index = spatial.New(entries)

	e.clusterBase = make(map[int]geom.Point, len(d.Clusters))
	for i := range d.Clusters {
		c := &d.Clusters[i]
		e.clusterBase[c.ID] = e.scales.ToScreen(c.CentroidPoint())
	}
}

func (e *Engine) resetSticky() {
	e.labelSet = nil
	e.cardIDs = nil
	e.indicator = ""
	e.markerRadius = scene.MarkerRadius(e.ctrl.Transform().Scale)
}

// AttachSurface connects a rendering surface. The next frame recreates
// every node on it.
func (e *Engine) AttachSurface(s scene.Surface) {
	e.renderer = scene.NewRenderer(s)
	e.RequestRedraw()
}

// Controller exposes the interaction controller for direct scripting
// (snapshots at an explicit transform, programmatic fit).
func (e *Engine) Controller() *interact.Controller { return e.ctrl }

// Scales exposes the base coordinate scales of the loaded dataset.
func (e *Engine) Scales() *geom.Scales { return e.scales }

// Images exposes the image warm cache.
func (e *Engine) Images() *imagecache.Cache { return e.images }

// RequestRedraw records a transform event for the next tick. Events
// between ticks coalesce to the latest transform.
func (e *Engine) RequestRedraw() {
	if e.scheduler != nil && e.ctrl != nil {
		e.scheduler.Request(e.ctrl.Transform())
	}
}

// PointerDown forwards a press to the controller.
func (e *Engine) PointerDown(p geom.Point, button interact.Button, ctrlHeld bool) {
	if e.ctrl != nil && e.ctrl.PointerDown(p, button, ctrlHeld) {
		e.RequestRedraw()
	}
}

// PointerMove forwards pointer motion; pans request a redraw.
func (e *Engine) PointerMove(p geom.Point) {
	if e.ctrl != nil && e.ctrl.PointerMove(p) {
		e.RequestRedraw()
	}
}

// PointerUp forwards a release.
func (e *Engine) PointerUp() {
	if e.ctrl != nil {
		e.ctrl.PointerUp()
	}
}

// Wheel forwards a wheel event; effective zoom changes request a redraw.
func (e *Engine) Wheel(deltaY float64, at geom.Point, ctrlHeld bool) {
	if e.ctrl != nil && e.ctrl.Wheel(deltaY, at, ctrlHeld, e.clock()) {
		e.RequestRedraw()
	}
}

// ZoomToCluster starts the eased transition to a cluster's bounding box.
// Unknown and empty clusters are no-ops.
func (e *Engine) ZoomToCluster(clusterID int) bool {
	if e.ctrl == nil || e.ds == nil {
		return false
	}
	if !e.ctrl.ZoomToCluster(e.ds, clusterID, e.clock()) {
		return false
	}
	e.RequestRedraw()
	return true
}

// Resize rebuilds the coordinate geometry for new viewport dimensions while
// the controller preserves the data-space viewport center.
func (e *Engine) Resize(width, height float64) {
	if e.ds == nil {
		e.cfg.Width, e.cfg.Height = width, height
		return
	}
	e.cfg.Width, e.cfg.Height = width, height
	e.scales = geom.NewScales(geom.Extent(e.ds.Positions()), width, height, e.cfg.Margin)
	e.rebuildGeometry()
	e.ctrl.Resize(e.scales)
	if e.renderer != nil {
		e.renderer.Reset()
	}
	e.resetSticky()
	e.RequestRedraw()
}

// Tick runs one redraw tick: it advances transitions, drains image
// completions, asks the scheduler for work, assembles the frame and applies
// it to the attached surface. It returns the frame, or nil when the tick
// was a no-op.
func (e *Engine) Tick() *scene.Frame {
	if e.ds == nil {
		return nil
	}
	now := e.clock()

	if e.ctrl.Step(now) {
		e.RequestRedraw()
	}
	if e.images.Drain() > 0 {
		e.RequestRedraw()
	}
	ended := e.ctrl.ConsumeGestureEnd(now)

	pass, ok := e.scheduler.Tick(ended)
	if !ok {
		return nil
	}

	frame := e.buildFrame(pass, e.ctrl.Active(now))
	observability.Engine().OnFrame(len(frame.Markers), len(frame.Cards), len(frame.Labels), e.clock().Sub(now))
	if e.renderer != nil {
		e.renderer.Apply(frame)
	}
	return frame
}

// Snapshot computes one complete frame at an explicit transform, running
// every sub-update unconditionally. Used by one-shot renderers and the HTTP
// snapshot endpoint; it does not disturb the live throttle state.
func (e *Engine) Snapshot(t geom.Transform) *scene.Frame {
	if e.ds == nil {
		return &scene.Frame{Transform: t}
	}
	min, max := e.scales.ZoomExtent()
	pass := sched.Pass{
		Transform: t.Clamp(min, max),
		Indicator: true,
		Markers:   true,
		Labels:    true,
		Cards:     true,
	}

	// buildFrame updates the sticky sub-update results; put them back so a
	// snapshot taken mid-interaction leaves the live view untouched.
	savedLabels, savedCards := e.labelSet, e.cardIDs
	savedIndicator, savedRadius := e.indicator, e.markerRadius
	f := e.buildFrame(pass, false)
	e.labelSet, e.cardIDs = savedLabels, savedCards
	e.indicator, e.markerRadius = savedIndicator, savedRadius
	return f
}

// Teardown releases the engine's external hooks. The engine is unusable
// afterwards.
func (e *Engine) Teardown() {
	if e.unsubImages != nil {
		e.unsubImages()
		e.unsubImages = nil
	}
	e.renderer = nil
	e.ds = nil
}

// buildFrame assembles the frame for one pass. Sub-updates not due this
// pass reuse their previous (sticky) result; pure crossfade opacities are
// recomputed every time.
func (e *Engine) buildFrame(pass sched.Pass, gestureActive bool) *scene.Frame {
	tr := pass.Transform
	zoom := tr.Scale

	f := &scene.Frame{
		Transform:      tr,
		Contours:       e.field.Contours,
		ContourOpacity: density.Opacity(zoom, e.scales.MinZoom),
	}

	project := func(p geom.Point) geom.Point {
		return tr.Apply(e.scales.ToScreen(p))
	}

	if pass.Markers {
		e.markerRadius = scene.MarkerRadius(zoom)
	}
	if op := scene.MarkerOpacity(zoom); op > 0 {
		f.Markers = make([]scene.MarkerState, len(e.markers))
		for i, m := range e.markers {
			f.Markers[i] = scene.MarkerState{
				ID:      m.id,
				Pos:     tr.Apply(m.pos),
				Radius:  e.markerRadius,
				Opacity: op,
				Cluster: m.cluster,
			}
		}
	}

	if op := scene.ItemLabelOpacity(zoom); op > 0 {
		f.ItemLabels = make([]scene.ItemLabelState, len(e.markers))
		for i, m := range e.markers {
			f.ItemLabels[i] = scene.ItemLabelState{
				ID:      m.id,
				Pos:     tr.Apply(m.pos),
				Text:    m.title,
				Opacity: op,
			}
		}
	}

	if pass.Labels {
		e.labelSet = labels.Place(e.ds.Clusters, project, labels.Options{
			Zoom:     zoom,
			Compact:  e.cfg.Compact,
			Viewport: e.labelViewport(),
		})
	} else {
		e.reprojectLabels(tr)
	}
	f.Labels = e.labelSet

	cardOp := scene.CardOpacity(zoom)
	// Card-set membership is frozen while a gesture is active; the
	// gesture-end flush recomputes it unconditionally.
	if pass.Cards && (!gestureActive || pass.GestureEnded) {
		e.cardIDs = e.queryCards(tr, cardOp)
	}
	if cardOp > 0 {
		f.Cards = e.cardStates(tr, zoom, cardOp)
	}

	if pass.Indicator {
		center := geom.Point{X: e.cfg.Width / 2, Y: e.cfg.Height / 2}
		e.indicator = labels.IndicatorText(e.ds.Clusters, project, center, e.cfg.IndicatorRadius)
	}
	f.Indicator = e.indicator

	return f
}

// labelViewport is the transformed-screen culling rectangle for label
// anchors, expanded so labels slide in rather than pop in.
func (e *Engine) labelViewport() geom.Rect {
	m := e.cfg.QueryMargin
	return geom.Rect{
		MinX: -m,
		MinY: -m,
		MaxX: e.cfg.Width + m,
		MaxY: e.cfg.Height + m,
	}
}

// reprojectLabels moves the sticky label set under a new transform without
// rerunning selection or collision. Box dimensions depend only on text and
// style, which are sticky, so boxes shift rigidly with their anchors.
func (e *Engine) reprojectLabels(tr geom.Transform) {
	for i := range e.labelSet {
		p := &e.labelSet[i]
		base, ok := e.clusterBase[p.ClusterID]
		if !ok {
			continue
		}
		anchor := tr.Apply(base)
		dx, dy := anchor.X-p.Anchor.X, anchor.Y-p.Anchor.Y
		p.Anchor = anchor
		p.Box.MinX += dx
		p.Box.MaxX += dx
		p.Box.MinY += dy
		p.Box.MaxY += dy
	}
}

// queryCards recomputes card-set membership: a bounded range query over
// relaxed base positions inside the visible rectangle. The budget ramps
// with card opacity so nodes trickle in across the crossfade band instead
// of arriving as one burst at the threshold.
func (e *Engine) queryCards(tr geom.Transform, cardOp float64) []string {
	if cardOp <= 0 {
		return nil
	}
	budget := e.cardCap(cardOp)
	if budget <= 0 {
		return nil
	}
	visible := tr.VisibleRect(e.cfg.Width, e.cfg.Height, e.cfg.QueryMargin)
	entries := e.index.Query(visible, budget)
	ids := make([]string, len(entries))
	for i, en := range entries {
		ids[i] = en.ID
	}
	return ids
}

func (e *Engine) cardCap(cardOp float64) int {
	budget := int(math.Ceil(cardOp * float64(e.cfg.MaxCards)))
	if e.cfg.Compact {
		budget = budget * 2 / 3
	}
	return budget
}

// cardStates builds the per-frame card values for the current membership.
// Cards counter-scale by 1/zoom so their screen size stays constant, and
// image-mode cards request their imagery on first sight.
func (e *Engine) cardStates(tr geom.Transform, zoom, cardOp float64) []scene.CardState {
	if len(e.cardIDs) == 0 {
		return nil
	}
	counterScale := 1.0
	if zoom > 0 {
		counterScale = 1 / zoom
	}
	isText := e.ds.IsText()

	states := make([]scene.CardState, 0, len(e.cardIDs))
	for _, id := range e.cardIDs {
		entry, ok := e.cardByID[id]
		if !ok {
			continue
		}
		warm := true
		if !isText {
			warm = e.images.Warm(entry.Content)
			if !warm {
				e.images.Request(e.loadCtx, entry.Content)
			}
		}
		states = append(states, scene.CardState{
			ID:      entry.ID,
			Pos:     tr.Apply(entry.BasePos),
			Scale:   counterScale,
			Opacity: cardOp,
			Warm:    warm,
			Title:   entry.Title,
			Snippet: entry.Snippet,
			Content: entry.Content,
			ClipID:  entry.ClipID,
		})
	}
	return states
}
