package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseGrade(t *testing.T) {
	for v, want := range map[int]Grade{0: GradeAgain, 1: GradeHard, 2: GradeGood, 3: GradeEasy} {
		got, err := ParseGrade(v)
		if err != nil {
			t.Fatalf("ParseGrade(%d) returned error %v", v, err)
		}
		if got != want {
			t.Errorf("ParseGrade(%d) = %v, want %v", v, got, want)
		}
	}

	for _, v := range []int{-1, 4, 100} {
		if _, err := ParseGrade(v); !errors.Is(err, ErrInvalidGrade) {
			t.Errorf("ParseGrade(%d) error = %v, want ErrInvalidGrade", v, err)
		}
	}
}

func TestGradeIsLapse(t *testing.T) {
	if !GradeAgain.IsLapse() || !GradeHard.IsLapse() {
		t.Error("AGAIN and HARD must be lapses")
	}
	if GradeGood.IsLapse() || GradeEasy.IsLapse() {
		t.Error("GOOD and EASY must not be lapses")
	}
}

func TestReviewStateIsDue(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	tests := []struct {
		name string
		next *time.Time
		want bool
	}{
		{"never scheduled", nil, true},
		{"in the past", &past, true},
		{"exactly now", &now, true},
		{"in the future", &future, false},
	}
	for _, tt := range tests {
		s := ReviewState{NextReviewAt: tt.next}
		if got := s.IsDue(now); got != tt.want {
			t.Errorf("%s: IsDue() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestReviewStateValidate(t *testing.T) {
	valid := ReviewState{CardID: 1, UserID: 2, EaseFactor: 2.5}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Expected valid state, got %v", err)
	}

	low := valid
	low.EaseFactor = 1.29
	if err := low.Validate(); err != ErrInvalidEaseFactor {
		t.Errorf("Expected %v, got %v", ErrInvalidEaseFactor, err)
	}

	neg := valid
	neg.IntervalDays = -1
	if err := neg.Validate(); err != ErrInvalidInterval {
		t.Errorf("Expected %v, got %v", ErrInvalidInterval, err)
	}
}

func TestValidationErrorIs(t *testing.T) {
	err := NewValidationError("difficulty", "must be between 0 and 3")
	if !errors.Is(err, ErrValidation) {
		t.Error("ValidationError must match ErrValidation")
	}
	if err.Error() != "difficulty: must be between 0 and 3" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestDeckShareIsExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	share, err := NewDeckShare("tok", 1, 2, time.Hour, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if share.IsExpired(now.Add(59 * time.Minute)) {
		t.Error("share should still be valid")
	}
	if !share.IsExpired(now.Add(time.Hour)) {
		t.Error("share should expire at ExpiresAt")
	}
	if _, err := NewDeckShare("", 1, 2, time.Hour, now); err != ErrShareInvalid {
		t.Errorf("Expected %v, got %v", ErrShareInvalid, err)
	}
}
