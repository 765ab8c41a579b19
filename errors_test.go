package htmlpdf

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestFetchErrorMessages(t *testing.T) {
	tests := []struct {
		err  *FetchError
		want string
	}{
		{&FetchError{URL: "http://x", Reason: FetchHTTPStatus, Status: 503}, "HTTP status 503"},
		{&FetchError{URL: "http://x", Reason: FetchTimeout}, "timed out"},
		{&FetchError{URL: "http://x", Reason: FetchUnreachable, Err: errors.New("no route")}, "unreachable"},
	}
	for _, tt := range tests {
		if msg := tt.err.Error(); !strings.Contains(msg, tt.want) {
			t.Errorf("Error() = %q, want substring %q", msg, tt.want)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	base := errors.New("boom")
	if !errors.Is(&FetchError{Reason: FetchUnreachable, Err: base}, base) {
		t.Error("FetchError does not unwrap its cause")
	}
	if !errors.Is(&DecodeError{Err: base}, base) {
		t.Error("DecodeError does not unwrap its cause")
	}
	if !errors.Is(&RenderError{Err: base}, base) {
		t.Error("RenderError does not unwrap its cause")
	}
}

func TestClassifyFetchErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FetchReason
	}{
		{"deadline", context.DeadlineExceeded, FetchTimeout},
		{"chrome timeout", errors.New("page load error net::ERR_TIMED_OUT"), FetchTimeout},
		{"dns", errors.New("page load error net::ERR_NAME_NOT_RESOLVED"), FetchUnreachable},
		{"refused", errors.New("page load error net::ERR_CONNECTION_REFUSED"), FetchUnreachable},
		{"other", errors.New("websocket closed"), FetchUnreachable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyFetchErr("http://x", tt.err)
			if got.Reason != tt.want {
				t.Errorf("reason = %s, want %s", got.Reason, tt.want)
			}
			if got.URL != "http://x" {
				t.Errorf("url = %q, want http://x", got.URL)
			}
		})
	}
}
