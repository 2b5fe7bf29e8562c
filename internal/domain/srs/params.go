package srs

import "github.com/phrazzld/flashdeck/internal/domain"

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// Seed values for a card that has never been reviewed
	InitialEaseFactor float64

	// Lower bound applied after every ease factor update
	MinEaseFactor float64

	// Ease factor update: EF += EaseBonus - q*(PenaltyBase + q*PenaltyStep),
	// where q = MaxGrade - grade
	EaseBonus   float64
	PenaltyBase float64
	PenaltyStep float64

	// Interval, in days, after the first and second consecutive successful review
	FirstInterval  int
	SecondInterval int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero fields keep their defaults.
type ParamsConfig struct {
	InitialEaseFactor float64
	MinEaseFactor     float64
	EaseBonus         float64
	PenaltyBase       float64
	PenaltyStep       float64
	FirstInterval     int
	SecondInterval    int
}

// NewDefaultParams creates a new Params instance with the SM-2 constants
func NewDefaultParams() *Params {
	return &Params{
		InitialEaseFactor: 2.5,
		MinEaseFactor:     domain.MinEaseFactor,
		EaseBonus:         0.1,
		PenaltyBase:       0.08,
		PenaltyStep:       0.02,
		FirstInterval:     1,
		SecondInterval:    6,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.InitialEaseFactor > 0 {
		params.InitialEaseFactor = config.InitialEaseFactor
	}
	// The floor can be raised but never lowered below the stored invariant.
	if config.MinEaseFactor > domain.MinEaseFactor {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.EaseBonus > 0 {
		params.EaseBonus = config.EaseBonus
	}
	if config.PenaltyBase > 0 {
		params.PenaltyBase = config.PenaltyBase
	}
	if config.PenaltyStep > 0 {
		params.PenaltyStep = config.PenaltyStep
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if params.InitialEaseFactor < params.MinEaseFactor {
		params.InitialEaseFactor = params.MinEaseFactor
	}

	return params
}
