package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/baxromumarov/wordwise/internal/httpx"
)

const (
	ErrorNetwork   = "network"
	ErrorParsing   = "parsing"
	ErrorNotFound  = "not_found"
	ErrorRateLimit = "rate_limit"
	ErrorRobots    = "robots"
	ErrorTimeout   = "timeout"
	ErrorUnknown   = "unknown"
)

// ClassifyFetchError buckets transport failures by upstream status.
func ClassifyFetchError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	if errors.Is(err, httpx.ErrBlockedByRobots) {
		return ErrorRobots
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}
	var fe *httpx.FetchError
	if errors.As(err, &fe) {
		switch fe.Status {
		case http.StatusTooManyRequests:
			return ErrorRateLimit
		case http.StatusNotFound:
			return ErrorNotFound
		default:
			return ErrorNetwork
		}
	}
	return ErrorUnknown
}

// ClassifyUpstreamError extends ClassifyFetchError with decoding failures.
func ClassifyUpstreamError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	if kind := ClassifyFetchError(err); kind != ErrorUnknown {
		return kind
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return ErrorParsing
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "decode failed") ||
		strings.Contains(msg, "unmarshal") ||
		strings.Contains(msg, "invalid character") {
		return ErrorParsing
	}
	return ErrorNetwork
}
