package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/londoners/londoners-aws/londoners"
)

func TestHTTPResponseFromError(t *testing.T) {
	t.Run("auth-error", func(t *testing.T) {
		response, err := newHTTPResponseFromError(&londoners.UpstreamAuthError{
			Scope:      londoners.ScopeOpenAPI,
			StatusCode: http.StatusForbidden,
			Body:       `{"error": "invalid_client"}`})
		require.NoError(t, err)

		// A failed token exchange is a server-side fault and must keep the
		// upstream error text in the answer.
		require.Equal(t, http.StatusInternalServerError, response.StatusCode)
		body := parseResponseBody(t, response)
		details, _ := body.Text("details", "error")
		require.Equal(t, "invalid_client", details)
	})

	t.Run("upstream-error-mirrors-status", func(t *testing.T) {
		response, err := newHTTPResponseFromError(&londoners.UpstreamError{
			StatusCode: http.StatusConflict,
			Body:       `{"message": "taken"}`})
		require.NoError(t, err)
		require.Equal(t, http.StatusConflict, response.StatusCode)
		body := parseResponseBody(t, response)
		message, _ := body.Text("details", "message")
		require.Equal(t, "taken", message)
	})

	t.Run("upstream-error-without-status", func(t *testing.T) {
		response, err := newHTTPResponseFromError(&londoners.UpstreamError{
			Body: "connection refused"})
		require.NoError(t, err)
		require.Equal(t, http.StatusInternalServerError, response.StatusCode)
		body := parseResponseBody(t, response)
		require.Equal(t, "connection refused", body.Get("details"))
	})
}
