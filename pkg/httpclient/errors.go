package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/entremotivator/Syncup/pkg/errors"
)

// remoteError is the error body shape returned by WordPress style REST APIs.
type remoteError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseResponseError converts a non-2xx HTTP response from an upstream API
// into an AppError. The response body is consumed but not closed.
func ParseResponseError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var remote remoteError
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if readErr == nil && len(body) > 0 {
		_ = json.Unmarshal(body, &remote)
	}
	msg := remote.Message
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errors.Unauthorized(msg)
	case resp.StatusCode == http.StatusNotFound:
		return errors.NotFound("resource", remote.Code)
	case resp.StatusCode >= 500:
		return errors.GatewayUnavailable(fmt.Errorf("upstream %d: %s", resp.StatusCode, msg))
	default:
		return errors.InvalidInput(msg)
	}
}
