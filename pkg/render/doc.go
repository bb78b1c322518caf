// Package render turns computed frames into output artifacts.
//
// # Overview
//
// The engine computes frames; this package draws them. It provides:
//
//   - A one-shot SVG sink ([RenderSVG]) for snapshots and the HTTP server
//   - A retained surface ([Canvas]) that accumulates diffed scene updates
//     and can serialize its current state on demand
//
// # One-shot Rendering
//
// [RenderSVG] serializes a complete frame into a standalone SVG document:
// density contours, point markers, content cards, cluster labels and the
// region indicator, with the same crossfade opacities the interactive view
// would show.
//
//	frame := eng.Snapshot(view)
//	svg := render.RenderSVG(frame, render.WithViewport(1280, 800))
//
// # Retained Rendering
//
// [Canvas] implements the scene surface interface, so it can be attached
// to a live engine. The engine's renderer diffs consecutive frames and the
// canvas keeps marker and card nodes alive across ticks, mirroring how a
// DOM-backed front end would reuse elements.
package render
