package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/slidecast/presentation-service/internal/errs"
	"github.com/slidecast/presentation-service/pkg/model"
)

// TalkService owns the deck and the presentation state machine. All
// transitions run under one exclusive lock; they are pure and O(1), so
// the lock is never held across I/O.
type TalkService struct {
	mu    sync.Mutex
	talk  model.Talk
	state model.State
	now   func() time.Time
	log   *zap.Logger
}

// NewTalkService creates the service for the given talk.
// Returns errs.ErrEmptyTalk when the deck has no slides.
func NewTalkService(talk model.Talk, log *zap.Logger) (*TalkService, error) {
	if len(talk.Slides) == 0 {
		return nil, fmt.Errorf("talk %q: %w", talk.Title, errs.ErrEmptyTalk)
	}
	log.Info("talk loaded",
		zap.String("title", talk.Title),
		zap.Int("slides", len(talk.Slides)))
	return &TalkService{
		talk:  talk,
		state: model.NewState(),
		now:   time.Now,
		log:   log,
	}, nil
}

// Talk returns a snapshot of the current deck.
func (s *TalkService) Talk() model.Talk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.talk
}

// Slides returns a copy of the slide list.
func (s *TalkService) Slides() []model.Slide {
	s.mu.Lock()
	defer s.mu.Unlock()
	slides := make([]model.Slide, len(s.talk.Slides))
	copy(slides, s.talk.Slides)
	return slides
}

// SlideByID returns the slide addressed by id, if any.
func (s *TalkService) SlideByID(id model.SlideID) (model.Slide, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.talk.SlideByID(id)
}

// CurrentState returns a snapshot of the presentation state.
func (s *TalkService) CurrentState() model.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TotalDuration returns the wall-clock presenting time accrued so far.
func (s *TalkService) TotalDuration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TotalDuration(s.now())
}

// HandleCommand feeds one command through the state machine and renders
// the transition as a notification. Domain errors (out-of-range GoTo,
// empty deck) leave the state untouched and come back as Error
// notifications, never as panics.
func (s *TalkService) HandleCommand(cmd model.Command) model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch cmd.Command {
	case model.CommandRegister, model.CommandUnregister:
		// Identity bookkeeping happens at the transport endpoint; the
		// state machine answers with the current truth.
		return model.StateNotification(s.state)
	case model.CommandPing:
		return model.PongNotification()
	case model.CommandBlink:
		return model.BlinkNotification()
	case model.CommandFirst:
		return s.commandFirst()
	case model.CommandLast:
		return s.commandLast()
	case model.CommandGoTo:
		if cmd.Slide == nil {
			return model.ErrorNotification("GoTo requires a slide index")
		}
		return s.commandGoTo(*cmd.Slide)
	case model.CommandNext:
		return s.commandNext()
	case model.CommandPrevious:
		return s.commandPrevious()
	case model.CommandNextStep:
		return s.commandNextStep()
	case model.CommandPreviousStep:
		return s.commandPreviousStep()
	case model.CommandPause:
		return s.commandPause()
	case model.CommandResume:
		return s.commandResume()
	default:
		return model.ErrorNotification(fmt.Sprintf("unknown command %q", cmd.Command))
	}
}

// ReloadTalk swaps the deck while preserving the viewer position as best
// it can: exact title match, then case-insensitive match, then the same
// index when the slide count is unchanged, then the first slide.
func (s *TalkService) ReloadTalk(newTalk model.Talk) (model.Notification, error) {
	if len(newTalk.Slides) == 0 {
		return model.Notification{}, fmt.Errorf("reload talk: %w", errs.ErrEmptyTalk)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	currentID, ok := s.state.CurrentSlide()
	if !ok {
		currentID = 0
	}
	newID := preserveSlidePosition(s.talk.Slides, newTalk.Slides, currentID)

	s.log.Info("talk reloaded",
		zap.String("title", newTalk.Title),
		zap.Int("slides", len(newTalk.Slides)),
		zap.Int("old_slide", currentID.Index()),
		zap.Int("new_slide", newID.Index()))

	s.talk = newTalk
	if s.state.Phase != model.PhaseInit {
		s.state = s.state.WithSlide(newID)
	}
	return model.TalkChangeNotification(s.state), nil
}

func (s *TalkService) commandFirst() model.Notification {
	if len(s.talk.Slides) == 0 {
		return model.ErrorNotification(errs.ErrEmptyTalk.Error())
	}
	s.navigate(0)
	return model.StateNotification(s.state)
}

func (s *TalkService) commandLast() model.Notification {
	if len(s.talk.Slides) == 0 {
		return model.ErrorNotification(errs.ErrEmptyTalk.Error())
	}
	s.navigate(s.talk.LastSlideID())
	return model.StateNotification(s.state)
}

func (s *TalkService) commandGoTo(index int) model.Notification {
	total := len(s.talk.Slides)
	target := model.SlideID(index)
	if !target.Valid(total) {
		return model.ErrorNotification(
			fmt.Sprintf("slide index %d not found, total slides: %d", index, total))
	}
	s.navigate(target)
	return model.StateNotification(s.state)
}

func (s *TalkService) commandNext() model.Notification {
	total := len(s.talk.Slides)
	if total == 0 {
		return model.ErrorNotification(errs.ErrEmptyTalk.Error())
	}

	switch s.state.Phase {
	case model.PhaseInit:
		s.state = s.state.Running(0, 0, s.now())
	case model.PhaseRunning:
		current, _ := s.state.CurrentSlide()
		if current.Index()+1 < total {
			s.state = s.state.WithSlide(current + 1)
		} else {
			s.state = s.state.Done(s.now())
		}
	case model.PhasePaused:
		current, ok := s.state.CurrentSlide()
		switch {
		case !ok:
			s.state = s.state.Running(0, 0, s.now())
		case current.Index()+1 < total:
			s.state = s.state.Running(current+1, 0, s.now())
		default:
			s.state = s.state.Done(s.now())
		}
	case model.PhaseDone:
		// Past the end already; Next has no target.
	}
	return model.StateNotification(s.state)
}

func (s *TalkService) commandPrevious() model.Notification {
	if len(s.talk.Slides) == 0 {
		return model.ErrorNotification(errs.ErrEmptyTalk.Error())
	}

	switch s.state.Phase {
	case model.PhaseInit:
		s.state = s.state.Running(0, 0, s.now())
	case model.PhaseRunning:
		if current, ok := s.state.CurrentSlide(); ok && current > 0 {
			s.state = s.state.WithSlide(current - 1)
		}
	case model.PhasePaused:
		current, ok := s.state.CurrentSlide()
		if !ok || current == 0 {
			s.state = s.state.Running(0, 0, s.now())
		} else {
			s.state = s.state.Running(current-1, 0, s.now())
		}
	case model.PhaseDone:
		// Done means past the last slide, so stepping back re-shows it.
		current, _ := s.state.CurrentSlide()
		s.state = s.state.Running(current, 0, s.now())
	}
	return model.StateNotification(s.state)
}

func (s *TalkService) commandNextStep() model.Notification {
	current, ok := s.state.CurrentSlide()
	if !ok {
		return model.StateNotification(s.state)
	}
	slide, ok := s.talk.SlideByID(current)
	if !ok {
		return model.StateNotification(s.state)
	}

	if s.state.Step < slide.StepCount {
		s.state = s.state.WithStep(s.state.Step + 1)
		return model.StateNotification(s.state)
	}
	// All steps revealed; roll over to the next slide.
	return s.commandNext()
}

func (s *TalkService) commandPreviousStep() model.Notification {
	if s.state.Step > 0 {
		s.state = s.state.WithStep(s.state.Step - 1)
		return model.StateNotification(s.state)
	}

	current, ok := s.state.CurrentSlide()
	if !ok || current == 0 {
		return s.commandPrevious()
	}
	// Land on the previous slide with all of its steps revealed.
	notification := s.commandPrevious()
	if prev, ok := s.state.CurrentSlide(); ok {
		if slide, found := s.talk.SlideByID(prev); found && slide.StepCount > 0 {
			s.state = s.state.WithStep(slide.StepCount)
			return model.StateNotification(s.state)
		}
	}
	return notification
}

func (s *TalkService) commandPause() model.Notification {
	if s.state.Phase == model.PhaseRunning {
		s.state = s.state.Paused(s.now())
	}
	return model.StateNotification(s.state)
}

func (s *TalkService) commandResume() model.Notification {
	if s.state.Phase == model.PhasePaused {
		current, ok := s.state.CurrentSlide()
		if !ok {
			current = 0
		}
		s.state = s.state.Running(current, s.state.Step, s.now())
	}
	return model.StateNotification(s.state)
}

// navigate moves to the target slide: Init, Paused and Done (re-)enter
// Running there, Running just moves the current slide.
func (s *TalkService) navigate(target model.SlideID) {
	switch s.state.Phase {
	case model.PhaseRunning:
		if current, ok := s.state.CurrentSlide(); !ok || current != target {
			s.state = s.state.WithSlide(target)
		}
	default:
		s.state = s.state.Running(target, 0, s.now())
	}
}

func preserveSlidePosition(oldSlides, newSlides []model.Slide, currentID model.SlideID) model.SlideID {
	if current, ok := slideAt(oldSlides, currentID); ok {
		for i, slide := range newSlides {
			if slide.Title == current.Title {
				return model.SlideID(i)
			}
		}
		for i, slide := range newSlides {
			if strings.EqualFold(slide.Title, current.Title) {
				return model.SlideID(i)
			}
		}
	}
	if len(oldSlides) == len(newSlides) && currentID.Valid(len(newSlides)) {
		return currentID
	}
	return 0
}

func slideAt(slides []model.Slide, id model.SlideID) (model.Slide, bool) {
	if !id.Valid(len(slides)) {
		return model.Slide{}, false
	}
	return slides[id.Index()], true
}
