// Package slideshow cycles an output through the images of a directory.
package slideshow

import (
	"math/rand/v2"
	"sort"
	"time"

	"github.com/javanhut/Canviz/internal/config"
	"github.com/javanhut/Canviz/internal/imagesrc"
)

// Playlist is the ordered image list of one output plus its timer state.
// It is owned by the event loop and not safe for concurrent use.
type Playlist struct {
	images   []string
	index    int
	interval time.Duration
	paused   bool
	shownAt  time.Time
}

// Options control how a playlist is built.
type Options struct {
	Sorting   config.SortOrder
	Recursive bool
	Interval  time.Duration
	// Rand shuffles random playlists; nil uses the global source.
	Rand *rand.Rand
}

// New scans path and orders the result. A plain file gives a one-image
// playlist.
func New(path string, opts Options) (*Playlist, error) {
	images, err := imagesrc.Scan(path, opts.Recursive)
	if err != nil {
		return nil, err
	}
	order(images, opts.Sorting, opts.Rand)
	return &Playlist{images: images, interval: opts.Interval}, nil
}

// FromList builds a playlist over images as given.
func FromList(images []string, interval time.Duration) *Playlist {
	return &Playlist{images: append([]string(nil), images...), interval: interval}
}

func order(images []string, sorting config.SortOrder, rng *rand.Rand) {
	switch sorting {
	case config.SortAscending:
		sort.Strings(images)
	case config.SortDescending:
		sort.Sort(sort.Reverse(sort.StringSlice(images)))
	default:
		shuffle := rand.Shuffle
		if rng != nil {
			shuffle = rng.Shuffle
		}
		shuffle(len(images), func(i, j int) { images[i], images[j] = images[j], images[i] })
	}
}

func (p *Playlist) Len() int { return len(p.images) }

// Current returns the image being shown, or "" for an empty playlist.
func (p *Playlist) Current() string {
	if len(p.images) == 0 {
		return ""
	}
	return p.images[p.index]
}

// Next advances with wrap-around.
func (p *Playlist) Next() string {
	if len(p.images) == 0 {
		return ""
	}
	p.index = (p.index + 1) % len(p.images)
	return p.images[p.index]
}

// Previous steps back with wrap-around.
func (p *Playlist) Previous() string {
	if len(p.images) == 0 {
		return ""
	}
	p.index = (p.index - 1 + len(p.images)) % len(p.images)
	return p.images[p.index]
}

// Active reports whether the playlist rotates on its own.
func (p *Playlist) Active() bool {
	return len(p.images) > 1 && p.interval > 0
}

func (p *Playlist) Paused() bool { return p.paused }
func (p *Playlist) Pause()       { p.paused = true }

// Resume restarts the timer from now.
func (p *Playlist) Resume(now time.Time) {
	p.paused = false
	p.shownAt = now
}

// Shown records that the current image went on screen at now.
func (p *Playlist) Shown(now time.Time) { p.shownAt = now }

// Due reports whether the interval has elapsed for an active, running
// playlist.
func (p *Playlist) Due(now time.Time) bool {
	if !p.Active() || p.paused {
		return false
	}
	return !now.Before(p.shownAt.Add(p.interval))
}
