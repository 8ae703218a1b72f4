package wayland

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/javanhut/Canviz/internal/platform"
)

type recordingHandler struct {
	calls []string
}

func (h *recordingHandler) OutputAdded(out platform.Output)   { h.calls = append(h.calls, "added "+out.Key()) }
func (h *recordingHandler) OutputRemoved(out platform.Output) { h.calls = append(h.calls, "removed "+out.Key()) }
func (h *recordingHandler) Configure(id uint64, w, hh int)    { h.calls = append(h.calls, "configure") }
func (h *recordingHandler) Closed(id uint64)                  { h.calls = append(h.calls, "closed") }
func (h *recordingHandler) ScaleChanged(out string, n int)    { h.calls = append(h.calls, "scale "+out) }
func (h *recordingHandler) FrameReady(id uint64)              { h.calls = append(h.calls, "frame") }

// fakeReader refuses the read intent a set number of times, dispatching a
// queued listener on each refusal.
type fakeReader struct {
	refusals  int
	onPending func()
	ops       []string
}

func (r *fakeReader) prepareRead() bool {
	if r.refusals > 0 {
		r.refusals--
		r.ops = append(r.ops, "prepare-busy")
		return false
	}
	r.ops = append(r.ops, "prepare")
	return true
}

func (r *fakeReader) dispatchPending() error {
	r.ops = append(r.ops, "dispatch-pending")
	if r.onPending != nil {
		r.onPending()
	}
	return nil
}

func (r *fakeReader) cancelRead() { r.ops = append(r.ops, "cancel") }
func (r *fakeReader) flush()      { r.ops = append(r.ops, "flush") }

func TestPrepareReadDeliversEventsLeftInDefaultQueue(t *testing.T) {
	c := &Client{}
	h := &recordingHandler{}
	r := &fakeReader{refusals: 1}
	r.onPending = func() {
		c.queue(func(hd platform.Handler) { hd.FrameReady(3) })
	}

	ready, err := c.prepareRead(r, h)
	if err != nil {
		t.Fatalf("prepareRead() error: %v", err)
	}
	if ready {
		t.Fatal("prepareRead() = true, want false so the caller does not poll")
	}
	if diff := cmp.Diff([]string{"frame"}, h.calls); diff != "" {
		t.Fatalf("handler calls mismatch (-want +got):\n%s", diff)
	}
	wantOps := []string{"prepare-busy", "dispatch-pending", "prepare", "cancel", "flush"}
	if diff := cmp.Diff(wantOps, r.ops); diff != "" {
		t.Fatalf("display ops mismatch (-want +got):\n%s", diff)
	}
	if len(c.events) != 0 {
		t.Fatalf("events left queued: %d", len(c.events))
	}
}

func TestPrepareReadKeepsIntentWhenNothingQueued(t *testing.T) {
	c := &Client{}
	h := &recordingHandler{}
	r := &fakeReader{refusals: 2}

	ready, err := c.prepareRead(r, h)
	if err != nil {
		t.Fatalf("prepareRead() error: %v", err)
	}
	if !ready {
		t.Fatal("prepareRead() = false, want true")
	}
	if len(h.calls) != 0 {
		t.Fatalf("handler calls = %v, want none", h.calls)
	}
	wantOps := []string{"prepare-busy", "dispatch-pending", "prepare-busy", "dispatch-pending", "prepare"}
	if diff := cmp.Diff(wantOps, r.ops); diff != "" {
		t.Fatalf("display ops mismatch (-want +got):\n%s", diff)
	}
}
