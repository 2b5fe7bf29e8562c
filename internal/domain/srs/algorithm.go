package srs

import (
	"math"
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// seedState returns the state of a card that has never been reviewed.
func seedState(params *Params) domain.ReviewState {
	return domain.ReviewState{
		EaseFactor:   params.InitialEaseFactor,
		IntervalDays: 0,
		Repetitions:  0,
	}
}

// calculateNewEaseFactor applies the SM-2 ease update for a non-AGAIN grade.
//
// With the default params the delta is -0.14 for HARD, 0 for GOOD and +0.1 for
// EASY. The result never drops below params.MinEaseFactor.
func calculateNewEaseFactor(currentEF float64, grade domain.Grade, params *Params) float64 {
	q := float64(domain.GradeEasy - grade)
	newEF := currentEF + params.EaseBonus - q*(params.PenaltyBase+q*params.PenaltyStep)

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}
	return newEF
}

// calculateNewInterval returns the interval for a successful (GOOD or EASY)
// review given the repetitions before this review.
func calculateNewInterval(currentInterval, repetitions int, easeFactor float64, params *Params) int {
	switch repetitions {
	case 0:
		return params.FirstInterval
	case 1:
		return params.SecondInterval
	default:
		return int(math.Round(float64(currentInterval) * easeFactor))
	}
}

// calculateNextReviewDate adds interval days to now at second precision.
func calculateNextReviewDate(interval int, now time.Time) time.Time {
	return now.AddDate(0, 0, interval).Truncate(time.Second)
}

// calculateNextState produces the state after grading prior at now.
//
// AGAIN resets interval and repetitions without touching the ease factor.
// Every other grade updates the ease factor first; HARD then lapses the card
// the same way AGAIN does, while GOOD and EASY grow the interval 1, 6, then
// interval*EF and count one more repetition.
//
// The prior state is never modified.
func calculateNextState(
	prior *domain.ReviewState,
	grade domain.Grade,
	now time.Time,
	params *Params,
) *domain.ReviewState {
	var next domain.ReviewState
	if prior != nil {
		next = *prior
	} else {
		next = seedState(params)
	}

	if grade == domain.GradeAgain {
		next.Repetitions = 0
		next.IntervalDays = 0
	} else {
		next.EaseFactor = calculateNewEaseFactor(next.EaseFactor, grade, params)

		if grade.IsLapse() {
			next.Repetitions = 0
			next.IntervalDays = 0
		} else {
			next.IntervalDays = calculateNewInterval(next.IntervalDays, next.Repetitions, next.EaseFactor, params)
			next.Repetitions++
		}
	}

	nextReview := calculateNextReviewDate(next.IntervalDays, now)
	next.NextReviewAt = &nextReview
	next.ReviewedAt = now.Truncate(time.Second)
	next.LastGrade = grade

	return &next
}
