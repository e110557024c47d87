package ebay

import (
	"fmt"
	"io"
	"net/http"

	go_json "github.com/goccy/go-json"
)

type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ebay api: %d %s for %s", e.StatusCode, e.Message, e.URL)
}

type errorDetail struct {
	ErrorID  int    `json:"errorId"`
	Domain   string `json:"domain"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

func parseAPIError(resp *http.Response, u string) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
			URL:        u,
		}
	}

	var errResp struct {
		Errors []errorDetail `json:"errors"`
	}

	if err := go_json.Unmarshal(body, &errResp); err != nil || len(errResp.Errors) == 0 {
		msg := resp.Status
		if len(body) > 0 && err != nil {
			msg = string(body)
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    msg,
			URL:        u,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    errResp.Errors[0].Message,
		URL:        u,
	}
}
