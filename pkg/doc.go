// Package pkg provides the core libraries for Metalize circuit rendering.
//
// # Overview
//
// Metalize turns a tabular planar-circuit design (chips, polygons, paths,
// junctions) into the draw-call sequence a CAD modeler would execute. The pkg
// directory is organized into four main areas:
//
//  1. [design] - The design table: elements, chips, TOML files, storage backends
//  2. [geometry] / [units] - Numeric core (fillet eligibility, rectangle detection, rounding)
//  3. [modeler] / [render] - Modeler interface, artifact backends, and the render pass
//  4. [pipeline] - Orchestration (load → render) with caching
//
// # Architecture
//
// The typical data flow through Metalize:
//
//	Design file or store
//	         ↓
//	    [design] package (parse + validate the table)
//	         ↓
//	    [render/ansys] package (render pass: draw, fillet, subtract, perf-E)
//	         ↓
//	    [modeler] backends (pyEPR script or JSON operation log)
//
// # Quick Start
//
// Load a design and render it to a pyEPR automation script:
//
//	import (
//	    "context"
//	    "github.com/qweave/metalize/pkg/design"
//	    "github.com/qweave/metalize/pkg/modeler/script"
//	    "github.com/qweave/metalize/pkg/render/ansys"
//	)
//
//	// 1. Load and validate
//	d, _ := design.Load("transmon.toml")
//
//	// 2. Pick an artifact backend
//	w := script.New()
//
//	// 3. Run the render pass
//	r := ansys.New(d, w, nil)
//	_ = r.RenderDesign(context.Background(), nil)
//
//	// 4. The script is ready
//	fmt.Println(string(w.Bytes()))
//
// # Main Packages
//
// [design] - The design table and its TOML form. Elements are rows keyed by
// component id and kind (poly, path, junction). [design/store] persists
// designs in a directory, SQLite, or MongoDB.
//
// [geometry] - Fillet eligibility ([geometry.GoodFilletIndexes]) and the
// rectangle fast path ([geometry.IsRectangle]). This is the numeric heart of
// the render pass.
//
// [units] - Unit parsing and precision-aware rounding for design coordinates.
//
// [modeler] - The draw-call interface. Two backends: [modeler/script] emits a
// pyEPR automation script, [modeler/record] logs every call as JSON.
//
// [render/ansys] - The render pass. Walks the design table, draws geometry,
// applies fillets, accumulates ground-plane subtraction per chip, and assigns
// perfect-E boundaries to metal.
//
// [render/preview] - Graphviz structure diagrams of a design.
//
// [pipeline] - Complete load → render pipeline used by the CLI and HTTP
// bridge, with content-addressed artifact caching.
//
// [cache] - Artifact cache backends: file, Redis, and null.
//
// [session] - Render-pass sessions for the async HTTP bridge.
//
// [observability] - Pluggable hooks for render, cache, and HTTP events.
//
// [errors] - Coded errors with user-facing messages.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/render/ansys/... # Specific package
//
// [design]: https://pkg.go.dev/github.com/qweave/metalize/pkg/design
// [design/store]: https://pkg.go.dev/github.com/qweave/metalize/pkg/design/store
// [geometry]: https://pkg.go.dev/github.com/qweave/metalize/pkg/geometry
// [units]: https://pkg.go.dev/github.com/qweave/metalize/pkg/units
// [modeler]: https://pkg.go.dev/github.com/qweave/metalize/pkg/modeler
// [modeler/script]: https://pkg.go.dev/github.com/qweave/metalize/pkg/modeler/script
// [modeler/record]: https://pkg.go.dev/github.com/qweave/metalize/pkg/modeler/record
// [render/ansys]: https://pkg.go.dev/github.com/qweave/metalize/pkg/render/ansys
// [render/preview]: https://pkg.go.dev/github.com/qweave/metalize/pkg/render/preview
// [pipeline]: https://pkg.go.dev/github.com/qweave/metalize/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/qweave/metalize/pkg/cache
// [session]: https://pkg.go.dev/github.com/qweave/metalize/pkg/session
// [observability]: https://pkg.go.dev/github.com/qweave/metalize/pkg/observability
// [errors]: https://pkg.go.dev/github.com/qweave/metalize/pkg/errors
package pkg
