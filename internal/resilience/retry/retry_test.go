package retry

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:    attempts,
		InitialDelay:   5 * time.Millisecond,
		MaxDelay:       20 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

func TestWithBackoff(t *testing.T) {
	serverErr := &HTTPError{StatusCode: 503, Message: "Service Unavailable"}
	notFound := &HTTPError{StatusCode: 404, Message: "Not Found"}

	tests := []struct {
		name         string
		failures     int
		failErr      error
		attempts     int
		wantCalls    int
		wantErr      bool
		wantErrMatch error
	}{
		{name: "first attempt succeeds", failures: 0, failErr: serverErr, attempts: 3, wantCalls: 1},
		{name: "succeeds after retries", failures: 2, failErr: serverErr, attempts: 3, wantCalls: 3},
		{name: "attempts exhausted", failures: 10, failErr: serverErr, attempts: 3, wantCalls: 3, wantErr: true, wantErrMatch: serverErr},
		{name: "non retryable stops", failures: 10, failErr: notFound, attempts: 3, wantCalls: 1, wantErr: true, wantErrMatch: notFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithBackoff(context.Background(), fastConfig(tt.attempts), func() error {
				calls++
				if calls <= tt.failures {
					return tt.failErr
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("WithBackoff() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErrMatch != nil && !errors.Is(err, tt.wantErrMatch) {
				t.Errorf("WithBackoff() error = %v, want wrapping %v", err, tt.wantErrMatch)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig(5)
	cfg.InitialDelay = time.Second

	calls := 0
	err := WithBackoff(ctx, cfg, func() error {
		calls++
		cancel()
		return syscall.ECONNRESET
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("WithBackoff() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestWithBackoff_CustomRetryable(t *testing.T) {
	cfg := fastConfig(3)
	cfg.Retryable = func(error) bool { return true }

	calls := 0
	_ = WithBackoff(context.Background(), cfg, func() error {
		calls++
		return errors.New("parse error")
	})
	if calls != 3 {
		t.Errorf("calls = %d, want 3 with custom classifier", calls)
	}
}

func TestDo(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastConfig(3), func() (string, error) {
		calls++
		if calls == 1 {
			return "", &HTTPError{StatusCode: 429, Message: "Too Many Requests"}
		}
		return "feed", nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got != "feed" || calls != 2 {
		t.Errorf("Do() = %q after %d calls, want feed after 2", got, calls)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"500", &HTTPError{StatusCode: 500}, true},
		{"503 wrapped", fmt.Errorf("fetch feed: %w", &HTTPError{StatusCode: 503}), true},
		{"429", &HTTPError{StatusCode: 429}, true},
		{"408", &HTTPError{StatusCode: 408}, true},
		{"400", &HTTPError{StatusCode: 400}, false},
		{"404", &HTTPError{StatusCode: 404}, false},
		{"ECONNREFUSED", syscall.ECONNREFUSED, true},
		{"ECONNRESET", syscall.ECONNRESET, true},
		{"ETIMEDOUT", syscall.ETIMEDOUT, true},
		{"ENETUNREACH", syscall.ENETUNREACH, true},
		{"generic", errors.New("some error"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestConfigs(t *testing.T) {
	for name, cfg := range map[string]Config{
		"default": DefaultConfig(),
		"feed":    FeedFetchConfig(),
		"search":  SearchEngineConfig(),
		"page":    PageFetchConfig(),
		"db":      DBConfig(),
	} {
		if cfg.MaxAttempts < 1 {
			t.Errorf("%s: MaxAttempts = %d, want >= 1", name, cfg.MaxAttempts)
		}
		if cfg.InitialDelay > cfg.MaxDelay {
			t.Errorf("%s: InitialDelay %v > MaxDelay %v", name, cfg.InitialDelay, cfg.MaxDelay)
		}
	}
}

func TestHTTPError_Error(t *testing.T) {
	err := &HTTPError{StatusCode: 502, Message: "Bad Gateway"}
	if got := err.Error(); got != "HTTP 502: Bad Gateway" {
		t.Errorf("Error() = %q", got)
	}
}

func TestAddJitter(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		got := addJitter(base, 0.5)
		if got < base || got > base+base/2 {
			t.Fatalf("addJitter() = %v, want within [%v, %v]", got, base, base+base/2)
		}
	}
	if got := addJitter(base, 0); got != base {
		t.Errorf("addJitter(0) = %v, want %v", got, base)
	}
}
