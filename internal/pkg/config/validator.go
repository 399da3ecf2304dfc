package config

import (
	"cmp"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser accepts the standard five-field format ("*/15 * * * *").
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

var errEmpty = errors.New("must not be empty")

// ValidateCronSchedule checks a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("cron schedule %w", errEmpty)
	}
	if _, err := cronParser.Parse(schedule); err != nil {
		return fmt.Errorf("cron schedule %q: %w", schedule, err)
	}
	return nil
}

// ValidateTimezone checks an IANA zone name such as "Europe/Istanbul".
func ValidateTimezone(timezone string) error {
	if timezone == "" {
		return fmt.Errorf("timezone %w", errEmpty)
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", timezone, err)
	}
	return nil
}

// within reports v outside [lo, hi], or an inverted bound pair.
func within[T cmp.Ordered](v, lo, hi T) error {
	switch {
	case lo > hi:
		return fmt.Errorf("bounds [%v, %v] are inverted", lo, hi)
	case v < lo:
		return fmt.Errorf("%v is below %v", v, lo)
	case v > hi:
		return fmt.Errorf("%v is above %v", v, hi)
	}
	return nil
}

// ValidateDuration checks lo <= d <= hi.
func ValidateDuration(d, lo, hi time.Duration) error { return within(d, lo, hi) }

// ValidateIntRange checks lo <= v <= hi.
func ValidateIntRange(v, lo, hi int) error { return within(v, lo, hi) }

// ValidateFloatRange checks lo <= v <= hi.
func ValidateFloatRange(v, lo, hi float64) error { return within(v, lo, hi) }

func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%v is not positive", d)
	}
	return nil
}

// ValidateHTTPURL checks that s is an absolute http or https URL.
func ValidateHTTPURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q: scheme must be http or https", s)
	}
	if u.Host == "" {
		return fmt.Errorf("%q: host missing", s)
	}
	return nil
}
