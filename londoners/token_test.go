package londoners

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseScope(t *testing.T) {
	scope, err := ParseScope("open-api")
	require.NoError(t, err)
	require.Equal(t, ScopeOpenAPI, scope)

	scope, err = ParseScope("booking_engine:api")
	require.NoError(t, err)
	require.Equal(t, ScopeBookingEngine, scope)

	_, err = ParseScope("unknown")
	require.Error(t, err)
}

func TestAuthClientExchange(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var form map[string]string
		server := httptest.NewServer(http.HandlerFunc(
			func(writer http.ResponseWriter, request *http.Request) {
				require.NoError(t, request.ParseForm())
				form = map[string]string{
					"grant_type":    request.PostFormValue("grant_type"),
					"scope":         request.PostFormValue("scope"),
					"client_id":     request.PostFormValue("client_id"),
					"client_secret": request.PostFormValue("client_secret"),
				}
				writer.Header().Set("Content-Type", "application/json")
				fmt.Fprint(writer,
					`{"access_token":"granted","token_type":"Bearer",`+
						`"expires_in":86400}`)
			}))
		defer server.Close()

		client := NewAuthClient(&Settings{
			GuestyTokenURL:     server.URL,
			GuestyClientID:     "client-id",
			GuestyClientSecret: "client-secret"})

		token, err := client.Exchange(ScopeOpenAPI)
		require.NoError(t, err)
		require.Equal(t, "granted", token.Value)
		require.Equal(t, "Bearer", token.TokenType)
		require.Equal(t, ScopeOpenAPI, token.Scope)
		require.InDelta(t, 24*time.Hour,
			token.ExpiresAt.Sub(token.IssuedAt), float64(time.Second))

		require.Equal(t, "client_credentials", form["grant_type"])
		require.Equal(t, "open-api", form["scope"])
		require.Equal(t, "client-id", form["client_id"])
		require.Equal(t, "client-secret", form["client_secret"])
	})

	t.Run("denied", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(
			func(writer http.ResponseWriter, request *http.Request) {
				http.Error(writer, `{"error":"invalid_client"}`,
					http.StatusUnauthorized)
			}))
		defer server.Close()

		client := NewAuthClient(&Settings{GuestyTokenURL: server.URL})

		_, err := client.Exchange(ScopeOpenAPI)
		require.Error(t, err)
		authErr, isAuthErr := err.(*UpstreamAuthError)
		require.True(t, isAuthErr)
		require.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
		require.Equal(t, ScopeOpenAPI, authErr.Scope)
	})

	t.Run("no-access-token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(
			func(writer http.ResponseWriter, request *http.Request) {
				fmt.Fprint(writer, `{"token_type":"Bearer"}`)
			}))
		defer server.Close()

		client := NewAuthClient(&Settings{GuestyTokenURL: server.URL})

		_, err := client.Exchange(ScopeOpenAPI)
		require.Error(t, err)
	})

	t.Run("zero-lifetime-rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(
			func(writer http.ResponseWriter, request *http.Request) {
				fmt.Fprint(writer,
					`{"access_token":"granted","token_type":"Bearer",`+
						`"expires_in":0}`)
			}))
		defer server.Close()

		client := NewAuthClient(&Settings{GuestyTokenURL: server.URL})

		_, err := client.Exchange(ScopeOpenAPI)
		require.Error(t, err)
	})
}
