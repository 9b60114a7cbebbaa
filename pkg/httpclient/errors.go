package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// MaxErrorBody bounds how much of a failed response is read.
const MaxErrorBody = 1 << 20

// GenericFailure is used when a JSON error body carries no usable message.
const GenericFailure = "Request failed"

// messagePaths are tried in order against an error body.
var messagePaths = []string{"message", "error.message", "error", "msg", "detail"}

// ReadBody reads up to limit bytes of resp.Body and closes it.
func ReadBody(resp *http.Response, limit int64) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// ErrorMessage extracts a best-effort message from a non-2xx body. A body that
// is empty or not JSON yields "HTTP <status>"; a JSON body without a message
// yields GenericFailure. It never fails.
func ErrorMessage(body []byte, status int) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return fmt.Sprintf("HTTP %d", status)
	}
	for _, path := range messagePaths {
		res := gjson.GetBytes(body, path)
		if res.Type == gjson.String {
			if msg := strings.TrimSpace(res.String()); msg != "" {
				return msg
			}
		}
	}
	return GenericFailure
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}

// IsSuccess returns true for 2xx statuses.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
