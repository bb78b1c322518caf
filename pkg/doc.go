// Package pkg provides the core libraries for Pointscape embedding-map
// visualization.
//
// # Overview
//
// Pointscape turns 2-D projections of embedding collections into zoomable
// maps: clustered points become terrain with density contours, greedy
// cluster labels and content cards that fade in as you approach. The pkg
// directory is organized into four main areas:
//
//  1. Geometry and data ([geom], [dataset], [spatial], [density], [layout])
//  2. The frame pipeline ([labels], [scene], [sched], [interact], [engine])
//  3. Output sinks ([render], [lineage])
//  4. Infrastructure ([cache], [imagecache], [source], [errors], [httputil],
//     [observability], [buildinfo])
//
// # Architecture
//
// The typical data flow through Pointscape:
//
//	Dataset JSON (items + clusters)
//	         ↓
//	    [dataset] package (load, finalize, rank, tier)
//	         ↓
//	    [geom] / [density] / [spatial] / [layout] (per-dataset artifacts)
//	         ↓
//	    [engine] package (input → scheduler → frame assembly)
//	         ↓
//	    [scene] surfaces → [render] SVG / terminal cells
//
// # Quick Start
//
// Load a dataset and render one snapshot:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/pointscape/pkg/engine"
//	    "github.com/matzehuels/pointscape/pkg/geom"
//	    "github.com/matzehuels/pointscape/pkg/render"
//	    "github.com/matzehuels/pointscape/pkg/source"
//	)
//
//	d, _ := source.NewFileSource("embeddings_image.json").Load(context.Background())
//	eng := engine.New(engine.DefaultConfig(), nil, nil, nil)
//	_ = eng.Load(context.Background(), d)
//	frame := eng.Snapshot(geom.CenteredOn(geom.Point{X: 640, Y: 400}, 2, 1280, 800))
//	svg := render.RenderSVG(frame)
//
// # Main Packages
//
// [dataset] - Input model: items with 2-D positions, clusters with
// centroids, labels and sizes. Finalization backfills ids, derives member
// counts, ranks clusters by population and assigns label-of-detail tiers.
//
// [engine] - The orchestrator. Owns the per-dataset artifacts, routes
// pointer and wheel input through the interaction controller, asks the
// frame scheduler which throttled sub-updates are due and assembles the
// per-tick frame. Single-threaded by construction.
//
// [scene] - Frame and surface contracts plus the diffing renderer that
// turns consecutive frames into upsert/remove operations.
//
// [render] - SVG sink and retained canvas surface.
//
// [lineage] - Cluster lineage graph: species per surviving cluster linked
// by a spanning tree over centroid distances, exported as Graphviz DOT or
// rendered SVG.
//
// [cache] / [imagecache] - Rendered-artifact caching (file, Redis, null)
// and the asynchronous image warm set.
//
// [geom]: github.com/matzehuels/pointscape/pkg/geom
// [dataset]: github.com/matzehuels/pointscape/pkg/dataset
// [spatial]: github.com/matzehuels/pointscape/pkg/spatial
// [density]: github.com/matzehuels/pointscape/pkg/density
// [layout]: github.com/matzehuels/pointscape/pkg/layout
// [labels]: github.com/matzehuels/pointscape/pkg/labels
// [scene]: github.com/matzehuels/pointscape/pkg/scene
// [sched]: github.com/matzehuels/pointscape/pkg/sched
// [interact]: github.com/matzehuels/pointscape/pkg/interact
// [engine]: github.com/matzehuels/pointscape/pkg/engine
// [render]: github.com/matzehuels/pointscape/pkg/render
// [lineage]: github.com/matzehuels/pointscape/pkg/lineage
// [cache]: github.com/matzehuels/pointscape/pkg/cache
// [imagecache]: github.com/matzehuels/pointscape/pkg/imagecache
// [source]: github.com/matzehuels/pointscape/pkg/source
// [errors]: github.com/matzehuels/pointscape/pkg/errors
// [httputil]: github.com/matzehuels/pointscape/pkg/httputil
// [observability]: github.com/matzehuels/pointscape/pkg/observability
// [buildinfo]: github.com/matzehuels/pointscape/pkg/buildinfo
package pkg
