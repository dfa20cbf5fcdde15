package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAppErrorError(t *testing.T) {
	err := New(CodeValidation, "query is required")
	want := "VALIDATION_ERROR: query is required"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := Wrap(CodeSearchBackend, "dense search failed", errors.New("connection refused"))
	want = "SEARCH_BACKEND_ERROR: dense search failed: connection refused"
	if wrapped.Error() != want {
		t.Errorf("Error() = %q, want %q", wrapped.Error(), want)
	}
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := Wrap(CodeInternal, "wrapper", inner)

	if !errors.Is(err, inner) {
		t.Error("errors.Is should find the wrapped error")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeInvalidRequest, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeScrape, http.StatusInternalServerError},
		{CodeSearchBackend, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test")
			if got := err.HTTPStatus(); got != tt.status {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestWithDetail(t *testing.T) {
	err := New(CodeScrape, "download failed").
		WithDetail("url", "https://example.gov/doc.pdf").
		WithDetail("attempts", "3")

	if err.Details["url"] != "https://example.gov/doc.pdf" {
		t.Errorf("Details[url] = %q", err.Details["url"])
	}
	if err.Details["attempts"] != "3" {
		t.Errorf("Details[attempts] = %q", err.Details["attempts"])
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(NotFoundError("document")) {
		t.Error("IsNotFound should be true for NotFoundError")
	}
	if IsNotFound(ValidationError("bad")) {
		t.Error("IsNotFound should be false for ValidationError")
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("IsNotFound should be false for plain error")
	}
}

func TestWriteError(t *testing.T) {
	t.Run("app error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, InvalidRequestError("missing query"))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}

		var resp ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if resp.Code != CodeInvalidRequest {
			t.Errorf("code = %s, want %s", resp.Code, CodeInvalidRequest)
		}
	})

	t.Run("plain error is sanitized", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, errors.New("secret internal detail"))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
		}

		var resp ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if resp.Message == "secret internal detail" {
			t.Error("internal error message should not be exposed")
		}
	})
}
