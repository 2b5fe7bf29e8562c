package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// Common errors
var (
	ErrInvalidPriorState = errors.New("prior review state is invalid")
)

// Service defines the interface for SRS algorithm operations
type Service interface {
	// Apply computes the review state that follows grading prior at now.
	// A nil prior is treated as a card that has never been reviewed.
	Apply(prior *domain.ReviewState, grade domain.Grade, now time.Time) (*domain.ReviewState, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters.
// A nil params falls back to the defaults.
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// Apply implements the Service interface
func (s *defaultService) Apply(
	prior *domain.ReviewState,
	grade domain.Grade,
	now time.Time,
) (*domain.ReviewState, error) {
	return s.params.Apply(prior, grade, now)
}

// Apply computes the state that follows grading prior at now under p.
func (p *Params) Apply(prior *domain.ReviewState, grade domain.Grade, now time.Time) (*domain.ReviewState, error) {
	if !grade.Valid() {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidGrade, int(grade))
	}

	if prior != nil && (prior.EaseFactor < domain.MinEaseFactor || prior.IntervalDays < 0 || prior.Repetitions < 0) {
		return nil, ErrInvalidPriorState
	}

	return calculateNextState(prior, grade, now, p), nil
}
