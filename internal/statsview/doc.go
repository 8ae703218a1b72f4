// Package statsview serves runtime charts (goroutines, heap, GC pauses)
// of the daemon over HTTP. The server is only compiled in with the
// statsview build tag:
//
//	go build -tags statsview ./cmd/canviz
//
// and is then started with "canviz daemon --statsview". Without the tag
// Available reports false and Start fails with ErrUnavailable.
package statsview

import "errors"

// DefaultAddr is where the charts are served unless overridden.
const DefaultAddr = "localhost:18066"

// Path is the page the charts are served under.
const Path = "/debug/statsview"

// ErrUnavailable is returned by Start in builds without the statsview tag.
var ErrUnavailable = errors.New("stats server not available: rebuild with -tags statsview")
