package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"new", New(ErrCodeInvalidSearch, "search term too short: %q", "a"), `INVALID_SEARCH: search term too short: "a"`},
		{"wrapped", Wrap(ErrCodeNetwork, errors.New("connection reset"), "species list"), "NETWORK_ERROR: species list: connection reset"},
		{"key missing", New(ErrCodeAPIKeyMissing, "Perenual API key is missing"), "API_KEY_MISSING: Perenual API key is missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := Wrap(ErrCodeNetwork, cause, "species details %d", 7)

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if err.Message != "species details 7" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestCodes(t *testing.T) {
	rl := &RateLimitedError{RetryAfter: 2 * time.Second}

	tests := []struct {
		name string
		err  error
		code Code
	}{
		{"structured", New(ErrCodeInvalidSpeciesID, "bad id"), ErrCodeInvalidSpeciesID},
		{"outermost code wins", Wrap(ErrCodeUpstream, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeUpstream},
		{"through fmt wrapping", fmt.Errorf("search: %w", New(ErrCodeNotFound, "species 9")), ErrCodeNotFound},
		{"rate limited", rl, ErrCodeRateLimited},
		{"rate limited wrapped", fmt.Errorf("fetch species list: %w", rl), ErrCodeRateLimited},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(err, %q) = false", tt.code)
			}
			if Is(tt.err, "") {
				t.Error("Is(err, \"\") must be false")
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidLimit, "limit must be between 1 and 30")); got != "limit must be between 1 and 30" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestRateLimitedError(t *testing.T) {
	tests := []struct {
		err  *RateLimitedError
		want string
	}{
		{&RateLimitedError{RetryAfter: 60 * time.Second}, "rate limited: retry after 60 seconds"},
		{&RateLimitedError{Message: "species list"}, "rate limited: species list"},
		{&RateLimitedError{}, "rate limited"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
		if tt.err.Code() != ErrCodeRateLimited {
			t.Errorf("Code() = %v", tt.err.Code())
		}
	}
}

func TestIsRateLimited(t *testing.T) {
	rl := &RateLimitedError{}

	if !IsRateLimited(rl) || !IsRateLimited(Wrap(ErrCodeUpstream, rl, "species list")) {
		t.Error("rate limit not detected")
	}
	if IsRateLimited(New(ErrCodeUpstream, "status 500")) {
		t.Error("IsRateLimited(upstream) = true, want false")
	}
	if IsRateLimited(nil) {
		t.Error("IsRateLimited(nil) = true, want false")
	}
}
