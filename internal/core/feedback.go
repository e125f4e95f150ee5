package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Rating labels used for per-category feedback.
const (
	RatingExcellent Rating = "excellent"
	RatingGood      Rating = "good"
	RatingAverage   Rating = "average"
	RatingPoor      Rating = "poor"
)

const (
	RecommendYes   = "yes"
	RecommendMaybe = "maybe"
	RecommendNo    = "no"
)

type (
	Rating string

	Feedback struct {
		ID              string
		EventID         string
		ParticipantName string
		Rating          int // 1..5 stars
		Comments        string
		Recommendation  string
		Categories      map[string]Rating
		SubmittedAt     time.Time
	}
)

var (
	ErrInvalidRating         = errors.New("rating must be between 1 and 5")
	ErrInvalidRecommendation = errors.New("invalid recommendation")
)

// Ratings lists category ratings from best to worst.
func Ratings() []Rating {
	return []Rating{RatingExcellent, RatingGood, RatingAverage, RatingPoor}
}

func (r Rating) IsValid() bool {
	switch r {
	case RatingExcellent, RatingGood, RatingAverage, RatingPoor:
		return true
	}
	return false
}

func (f Feedback) Validate() error {
	if strings.TrimSpace(f.EventID) == "" {
		return fmt.Errorf("%w: missing event id", ErrInvalidArgument)
	}
	if strings.TrimSpace(f.ParticipantName) == "" {
		return ErrEmptyName
	}
	if f.Rating < 1 || f.Rating > 5 {
		return ErrInvalidRating
	}
	switch f.Recommendation {
	case RecommendYes, RecommendMaybe, RecommendNo:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRecommendation, f.Recommendation)
	}
	for cat, r := range f.Categories {
		if !r.IsValid() {
			return fmt.Errorf("%w: category %q rated %q", ErrInvalidArgument, cat, r)
		}
	}
	return nil
}

func (f Feedback) SearchFields() []string {
	return []string{f.ParticipantName, f.Comments}
}

func (f Feedback) CategoryValue() string {
	return f.Recommendation
}
