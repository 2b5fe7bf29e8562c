package domain

import (
	"errors"
	"fmt"
	"time"
)

// Grade is the four-level difficulty rating a user gives a card on review.
type Grade int

// Possible grades, ordered from worst to best recall.
const (
	GradeAgain Grade = 0
	GradeHard  Grade = 1
	GradeGood  Grade = 2
	GradeEasy  Grade = 3
)

// Review state validation errors
var (
	ErrEmptyReviewUserID = errors.New("review state user ID cannot be empty")
	ErrEmptyReviewCardID = errors.New("review state card ID cannot be empty")
	ErrInvalidInterval   = errors.New("interval must be greater than or equal to 0")
	ErrInvalidEaseFactor = errors.New("ease factor must be at least 1.3")
	ErrInvalidRepetition = errors.New("repetitions must be greater than or equal to 0")
)

// MinEaseFactor is the lower bound every stored ease factor respects.
const MinEaseFactor = 1.3

// ParseGrade converts a raw client value into a Grade.
func ParseGrade(v int) (Grade, error) {
	g := Grade(v)
	if !g.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidGrade, v)
	}
	return g, nil
}

// Valid reports whether g is one of the four defined grades.
func (g Grade) Valid() bool {
	return g >= GradeAgain && g <= GradeEasy
}

// IsLapse reports whether the grade resets repetitions.
func (g Grade) IsLapse() bool {
	return g < GradeGood
}

func (g Grade) String() string {
	switch g {
	case GradeAgain:
		return "again"
	case GradeHard:
		return "hard"
	case GradeGood:
		return "good"
	case GradeEasy:
		return "easy"
	default:
		return fmt.Sprintf("grade(%d)", int(g))
	}
}

// ReviewState is the spaced-repetition state of one card for one user.
// A nil NextReviewAt means the card has never been scheduled and is due.
type ReviewState struct {
	CardID       int64      `json:"card_id"`
	UserID       int64      `json:"user_id"`
	EaseFactor   float64    `json:"ease_factor"`
	IntervalDays int        `json:"interval_days"`
	Repetitions  int        `json:"repetitions"`
	NextReviewAt *time.Time `json:"next_review_at"`
	ReviewedAt   time.Time  `json:"reviewed_at"`
	LastGrade    Grade      `json:"last_grade"`
}

// Validate checks the stored invariants of the state.
func (s *ReviewState) Validate() error {
	if s.UserID <= 0 {
		return ErrEmptyReviewUserID
	}
	if s.CardID <= 0 {
		return ErrEmptyReviewCardID
	}
	if s.IntervalDays < 0 {
		return ErrInvalidInterval
	}
	if s.Repetitions < 0 {
		return ErrInvalidRepetition
	}
	if s.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}
	return nil
}

// IsDue reports whether the card should be presented at now.
func (s *ReviewState) IsDue(now time.Time) bool {
	return s.NextReviewAt == nil || !s.NextReviewAt.After(now)
}

// DueCard is a card selected for study together with the caller's review
// fields. Cards that were never reviewed carry the seed values and a nil
// NextReviewAt.
type DueCard struct {
	Card
	NextReviewAt *time.Time
	EaseFactor   float64
	IntervalDays int
	Repetitions  int
}

// ReviewLogEntry is one row of the append-only review history.
type ReviewLogEntry struct {
	CardID     int64
	UserID     int64
	Grade      Grade
	ReviewedAt time.Time
}
