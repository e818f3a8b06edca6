package ui

import (
	"errors"
	"testing"
	"time"

	"github.com/five82/stockroom/internal/api"
)

func TestHumanizeDuration(t *testing.T) {
	cases := []struct {
		name string
		in   int64 // seconds
		want string
	}{
		{"negative", -5, "now"},
		{"subsecond", 0, "now"},
		{"seconds", 12, "12s"},
		{"minutes", 61, "1m"},
		{"hours_only", 2*60*60 + 10, "2h"},
		{"hours_minutes", 2*60*60 + 3*60, "2h 3m"},
		{"days", 24 * 60 * 60, "1d"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := humanizeDuration(timeSeconds(tc.in))
			if got != tc.want {
				t.Fatalf("humanizeDuration(%d) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("  ", 10); got != "" {
		t.Fatalf("truncate blank = %q, want empty", got)
	}
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Fatalf("truncate = %q, want abc…", got)
	}
	if got := truncate("abc", 4); got != "abc" {
		t.Fatalf("truncate short = %q, want abc", got)
	}
}

func TestFormatMoney(t *testing.T) {
	cases := map[float64]string{
		0:        "$0.00",
		0.5:      "$0.50",
		1234.5:   "$1,234.50",
		-999.999: "-$1,000.00",
		1e6:      "$1,000,000.00",
	}
	for in, want := range cases {
		if got := formatMoney(in); got != want {
			t.Fatalf("formatMoney(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestDescribeError(t *testing.T) {
	if got := describeError(nil); got != "" {
		t.Fatalf("describeError(nil) = %q", got)
	}
	httpErr := &api.Error{Kind: api.KindHTTP, Status: 404, Message: "sales 9 not found"}
	if got := describeError(httpErr); got != "404: sales 9 not found" {
		t.Fatalf("describeError(http) = %q", got)
	}
	expired := &api.Error{Kind: api.KindHTTP, Status: 401, SessionInvalidated: true}
	if got := describeError(expired); got != "Session expired, please log in again" {
		t.Fatalf("describeError(expired) = %q", got)
	}
	netErr := &api.Error{Kind: api.KindNetwork, Cause: errors.New("dial tcp: connection refused")}
	if got := describeError(netErr); got != "API not running" {
		t.Fatalf("describeError(network) = %q", got)
	}
	if got := describeError(validationError{errors.New("name is required")}); got != "name is required" {
		t.Fatalf("describeError(validation) = %q", got)
	}
}

func TestFilterStrings_TrimsEmpty(t *testing.T) {
	values := []string{" a ", " ", "", "\t", "b"}
	out := filterStrings(values)
	if len(out) != 2 || out[0] != " a " || out[1] != "b" {
		t.Fatalf("filterStrings = %#v, want [%q %q]", out, " a ", "b")
	}
}

func timeSeconds(sec int64) time.Duration {
	return time.Duration(sec) * time.Second
}
