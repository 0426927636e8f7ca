package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// NetworkError reports an outbound request that could not produce a usable
// answer: either the transport failed or the server answered with a bad status.
type NetworkError struct {
	Method     string
	URL        string
	StatusCode int
	Snippet    string
	Err        error
}

func (e *NetworkError) Error() string {
	method := strings.ToLower(e.Method)
	if method == "" {
		method = "get"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", method, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s: status %d body: %s", method, e.URL, e.StatusCode, e.Snippet)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err wraps a *NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// GetOK performs a GET and returns the body, turning transport failures and
// non-200 responses into *NetworkError.
func GetOK(ctx context.Context, client Client, url string, headers map[string]string) ([]byte, error) {
	resp, err := client.Get(ctx, url, headers)
	if err != nil {
		return nil, &NetworkError{Method: http.MethodGet, URL: url, Err: err}
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, &NetworkError{Method: http.MethodGet, URL: url, StatusCode: resp.StatusCode(), Snippet: responseSnippet(body)}
	}
	return body, nil
}

// SendOK sends body and accepts any 2xx answer.
func SendOK(ctx context.Context, sender Sender, method, url string, headers map[string]string, body any) (int, error) {
	resp, err := sender.Send(ctx, method, url, headers, body)
	if err != nil {
		return 0, &NetworkError{Method: method, URL: url, Err: err}
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return status, &NetworkError{Method: method, URL: url, StatusCode: status, Snippet: responseSnippet(resp.Body())}
	}
	return status, nil
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
