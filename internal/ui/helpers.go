package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/five82/stockroom/internal/api"
)

func humanizeDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh %dm", h, m)
	default:
		return fmt.Sprintf("%dd", int(d.Hours())/24)
	}
}

func truncate(value string, limit int) string {
	runes := []rune(strings.TrimSpace(value))
	if limit <= 0 || len(runes) <= limit {
		return string(runes)
	}
	if limit == 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}

// formatMoney renders v with two decimals and thousands separators.
func formatMoney(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%.2f", v)
	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "$" + b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

// describeError turns an operation error into a one-line message.
func describeError(err error) string {
	if err == nil {
		return ""
	}
	var verr validationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	switch {
	case api.IsSessionInvalidated(err):
		return "Session expired, please log in again"
	case api.IsNetwork(err):
		return classifyConnectionError(err)
	case api.IsHTTP(err):
		msg := api.Message(err)
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Sprintf("%d: %s", api.StatusCode(err), msg)
	}
	return err.Error()
}

func classifyConnectionError(err error) string {
	s := err.Error()
	switch {
	case strings.Contains(s, "connection refused"):
		return "API not running"
	case strings.Contains(s, "deadline exceeded"), strings.Contains(s, "timeout"):
		return "Connection timeout"
	case strings.Contains(s, "no such host"):
		return "Host not found"
	case strings.Contains(s, "context canceled"):
		return "Cancelled"
	}
	return "Connection failed"
}

func filterStrings(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
