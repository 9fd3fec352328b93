package model

import (
	"fmt"
	"sync/atomic"
)

// SlideID identifies a slide by its position in the deck. IDs are minted
// sequentially by a SlideIDGenerator when a deck is loaded and are never
// reused within one load.
type SlideID int

// Index returns the zero-based position of the slide in the deck.
func (id SlideID) Index() int { return int(id) }

func (id SlideID) String() string { return fmt.Sprintf("%d", int(id)) }

// Valid reports whether the id addresses a slide in a deck of the given size.
func (id SlideID) Valid(totalSlides int) bool {
	return id >= 0 && int(id) < totalSlides
}

// SlideIDGenerator mints SlideIDs for one deck load. It is owned by the
// deck loader rather than being package-level state, so tests can reset it.
type SlideIDGenerator struct {
	seq atomic.Int64
}

// NewSlideIDGenerator creates a generator starting at zero.
func NewSlideIDGenerator() *SlideIDGenerator {
	return &SlideIDGenerator{}
}

// Next returns the next sequential SlideID.
func (g *SlideIDGenerator) Next() SlideID {
	return SlideID(g.seq.Add(1) - 1)
}

// Reset rewinds the sequence, typically before reloading a deck or in tests.
func (g *SlideIDGenerator) Reset() {
	g.seq.Store(0)
}

// SlideKind classifies a slide for rendering surfaces.
type SlideKind string

const (
	SlideKindCover    SlideKind = "cover"
	SlideKindPart     SlideKind = "part"
	SlideKindStandard SlideKind = "standard"
)

// Slide is an immutable content unit. Slides are owned by the talk store
// and are only ever replaced wholesale on reload, never mutated.
type Slide struct {
	ID        SlideID   `json:"id" yaml:"-"`
	Kind      SlideKind `json:"kind" yaml:"kind"`
	Title     string    `json:"title" yaml:"title"`
	Body      string    `json:"body,omitempty" yaml:"body"`
	Notes     string    `json:"notes,omitempty" yaml:"notes"`
	StepCount int       `json:"step_count,omitempty" yaml:"steps"`
}
