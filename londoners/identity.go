package londoners

import (
	"net/http"
	"net/url"
	"time"
)

// IdentityClient calls the GoTrue-style identity provider REST API that
// keeps user credentials and sessions. Administrative calls are signed with
// the service key, session calls with the public anonymous key.
type IdentityClient struct {
	httpClient *http.Client
	apiURL     string
	anonKey    string
	serviceKey string
}

// NewIdentityClient creates new identity provider client.
func NewIdentityClient(settings *Settings) *IdentityClient {
	return &IdentityClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiURL:     settings.IdentityAPIURL,
		anonKey:    settings.IdentityAnonKey,
		serviceKey: settings.IdentityServiceKey}
}

func (client *IdentityClient) call(
	method, path, key, bearer string,
	query url.Values,
	body, result interface{}) error {
	return callUpstreamHeaders(client.httpClient, method,
		client.apiURL+path, bearer, map[string]string{"apikey": key},
		query, body, result)
}

// CreateUser registers a user with the given credentials through the
// administrative endpoint. The email is confirmed right away, there is no
// confirmation round trip.
func (client *IdentityClient) CreateUser(
	email, password string, metadata JSON) (JSON, error) {
	result := JSON{}
	err := client.call(http.MethodPost, "/admin/users",
		client.serviceKey, client.serviceKey, nil,
		JSON{
			"email":         email,
			"password":      password,
			"email_confirm": true,
			"user_metadata": metadata},
		&result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SignIn exchanges user credentials for a session.
func (client *IdentityClient) SignIn(email, password string) (JSON, error) {
	query := url.Values{}
	query.Set("grant_type", "password")
	result := JSON{}
	err := client.call(http.MethodPost, "/token",
		client.anonKey, client.anonKey, query,
		JSON{"email": email, "password": password},
		&result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SignOut revokes the session of the given access token.
func (client *IdentityClient) SignOut(accessToken string) error {
	return client.call(http.MethodPost, "/logout",
		client.anonKey, accessToken, nil, nil, nil)
}
