// Package deck loads talk decks from YAML files. The markdown-to-deck
// compiler is an external collaborator; this loader only consumes its
// output format.
package deck

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slidecast/presentation-service/internal/errs"
	"github.com/slidecast/presentation-service/pkg/model"
)

type deckFile struct {
	Title  string      `yaml:"title"`
	Date   string      `yaml:"date"`
	Footer string      `yaml:"footer"`
	Slides []slideFile `yaml:"slides"`
}

type slideFile struct {
	Kind  string `yaml:"kind"`
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
	Notes string `yaml:"notes"`
	Steps int    `yaml:"steps"`
}

// Load reads a deck file and builds a Talk, minting slide ids from the
// given generator. The generator is reset first so ids always match the
// slide positions of this load.
func Load(path string, gen *model.SlideIDGenerator) (model.Talk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Talk{}, fmt.Errorf("read deck %s: %w", path, err)
	}
	return Parse(data, gen)
}

// Parse builds a Talk from raw deck YAML.
func Parse(data []byte, gen *model.SlideIDGenerator) (model.Talk, error) {
	var file deckFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return model.Talk{}, fmt.Errorf("parse deck: %w", err)
	}
	if len(file.Slides) == 0 {
		return model.Talk{}, fmt.Errorf("parse deck %q: %w", file.Title, errs.ErrEmptyTalk)
	}

	date := time.Now()
	if file.Date != "" {
		parsed, err := time.Parse("2006-01-02", file.Date)
		if err != nil {
			return model.Talk{}, fmt.Errorf("parse deck date %q: %w", file.Date, err)
		}
		date = parsed
	}

	gen.Reset()
	slides := make([]model.Slide, 0, len(file.Slides))
	for _, s := range file.Slides {
		slides = append(slides, model.Slide{
			ID:        gen.Next(),
			Kind:      slideKind(s.Kind),
			Title:     s.Title,
			Body:      s.Body,
			Notes:     s.Notes,
			StepCount: s.Steps,
		})
	}

	return model.Talk{
		Title:  file.Title,
		Date:   date,
		Footer: file.Footer,
		Slides: slides,
	}, nil
}

func slideKind(kind string) model.SlideKind {
	switch kind {
	case "cover":
		return model.SlideKindCover
	case "part":
		return model.SlideKindPart
	default:
		return model.SlideKindStandard
	}
}
