package model

import "time"

// Talk is the ordered deck of slides plus presentation metadata.
// A valid talk has at least one slide; constructing an empty one is
// possible but every consumer (TalkService, deck loader) rejects it.
type Talk struct {
	Title  string    `json:"title" yaml:"title"`
	Date   time.Time `json:"date" yaml:"date"`
	Footer string    `json:"footer,omitempty" yaml:"footer"`
	Slides []Slide   `json:"slides" yaml:"slides"`
}

// SlideByID returns the slide addressed by id, or false when out of range.
func (t *Talk) SlideByID(id SlideID) (Slide, bool) {
	if !id.Valid(len(t.Slides)) {
		return Slide{}, false
	}
	return t.Slides[id.Index()], true
}

// LastSlideID returns the id of the final slide. The deck must be non-empty.
func (t *Talk) LastSlideID() SlideID {
	return SlideID(len(t.Slides) - 1)
}
