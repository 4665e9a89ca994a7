package openai

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fwojciec/chatstream"
)

// parseHTTPError converts a non-2xx response into a *chatstream.APIError.
// The body is always kept as text; the OpenAI error envelope is decoded when
// present.
func parseHTTPError(resp *http.Response) error {
	apiErr := &chatstream.APIError{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("openai: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	apiErr.Body = strings.TrimSpace(string(data))

	var env apiErrorResponse
	if err := json.Unmarshal(data, &env); err == nil {
		apiErr.Message = env.Error.Message
		apiErr.Type = env.Error.Type
		if env.Error.Code != nil {
			apiErr.Code = fmt.Sprint(env.Error.Code)
		}
	}
	return apiErr
}
