package stage

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/abhishek017/GradPilot/internal/graduate"
	"github.com/abhishek017/GradPilot/internal/metrics"
)

// ErrNotEligible is returned when the operator tries to show a graduate
// who has not checked in or collected a gown.
var ErrNotEligible = errors.New("graduate not eligible for stage")

// GraduateSource supplies records and the eligible set. Eligible means
// attended with gown collected, ordered by ascending unique id; it is
// re-queried on every operation so a record that loses eligibility
// simply drops out of the walk.
type GraduateSource interface {
	FindByID(ctx context.Context, id string) (graduate.Graduate, error)
	Eligible(ctx context.Context) ([]graduate.Graduate, error)
}

// PointerStore holds the single current-presenter pointer; "" is idle.
type PointerStore interface {
	Current(ctx context.Context) (string, error)
	SetCurrent(ctx context.Context, id string) error
}

// Service drives the now-presenting screen. A single trusted operator
// owns the panel; conflicting concurrent operators are out of scope.
type Service struct {
	grads GraduateSource
	state PointerStore
	log   *zap.Logger
}

// NewService creates a stage service.
func NewService(grads GraduateSource, state PointerStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{grads: grads, state: state, log: log}
}

// Current returns the presenter on screen, or nil when idle. Purely
// observational; the display polls this.
func (s *Service) Current(ctx context.Context) (*graduate.Graduate, error) {
	id, err := s.state.Current(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}
	g, err := s.grads.FindByID(ctx, id)
	if errors.Is(err, graduate.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Reset clears the screen. Always legal.
func (s *Service) Reset(ctx context.Context) error {
	return s.state.SetCurrent(ctx, "")
}

// Select puts a specific graduate on screen. Unknown targets get
// graduate.ErrNotFound, ineligible ones ErrNotEligible; the pointer is
// untouched in either case.
func (s *Service) Select(ctx context.Context, id string) (graduate.Graduate, error) {
	g, err := s.grads.FindByID(ctx, id)
	if err != nil {
		return graduate.Graduate{}, err
	}
	if !g.Attended || !g.GownCollected {
		return graduate.Graduate{}, ErrNotEligible
	}
	if err := s.state.SetCurrent(ctx, g.ID); err != nil {
		return graduate.Graduate{}, err
	}
	return g, nil
}

// Advance moves to the next eligible graduate in unique-id order. With
// an empty eligible set the screen clears; with no current presenter, or
// a current one that has dropped out of the set, the walk restarts at
// the first element; past the last element the screen clears. No wrap.
func (s *Service) Advance(ctx context.Context) (*graduate.Graduate, error) {
	eligible, err := s.grads.Eligible(ctx)
	if err != nil {
		return nil, err
	}
	currentID, err := s.state.Current(ctx)
	if err != nil {
		return nil, err
	}

	var next *graduate.Graduate
	if len(eligible) > 0 {
		idx := -1
		for i, g := range eligible {
			if g.ID == currentID {
				idx = i
				break
			}
		}
		switch {
		case idx == -1:
			next = &eligible[0]
		case idx < len(eligible)-1:
			next = &eligible[idx+1]
		}
	}

	if next == nil {
		if err := s.state.SetCurrent(ctx, ""); err != nil {
			return nil, err
		}
		metrics.StageAdvances.Inc()
		s.log.Info("stage advanced past end, screen cleared")
		return nil, nil
	}
	if err := s.state.SetCurrent(ctx, next.ID); err != nil {
		return nil, err
	}
	metrics.StageAdvances.Inc()
	s.log.Info("stage advanced",
		zap.String("graduate", next.ID),
		zap.String("unique_id", next.UniqueID))
	return next, nil
}

// Eligible exposes the current walk order for the control panel.
func (s *Service) Eligible(ctx context.Context) ([]graduate.Graduate, error) {
	return s.grads.Eligible(ctx)
}
