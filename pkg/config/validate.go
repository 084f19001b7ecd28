package config

import (
	"cmp"
	"fmt"
	"time"
)

func inRange[T cmp.Ordered](v, lo, hi T) error {
	switch {
	case lo > hi:
		return fmt.Errorf("invalid range [%v, %v]", lo, hi)
	case v < lo:
		return fmt.Errorf("%v is below minimum %v", v, lo)
	case v > hi:
		return fmt.Errorf("%v exceeds maximum %v", v, hi)
	}
	return nil
}

// ValidateIntRange checks lo <= v <= hi.
func ValidateIntRange(v, lo, hi int) error { return inRange(v, lo, hi) }

// ValidateFloatRange checks lo <= v <= hi.
func ValidateFloatRange(v, lo, hi float64) error { return inRange(v, lo, hi) }

// ValidateDurationRange checks lo <= d <= hi.
func ValidateDurationRange(d, lo, hi time.Duration) error { return inRange(d, lo, hi) }

// ValidatePositiveDuration rejects zero and negative durations.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %v", d)
	}
	return nil
}
