package londoners

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// TokenSource produces a currently valid bearer token for a scope.
type TokenSource interface {
	GetToken(Scope) (string, error)
}

// TokenExchanger exchanges client credentials for a new access token.
type TokenExchanger interface {
	Exchange(Scope) (*CachedToken, error)
}

// TokenCache hides token refresh from callers: it returns the stored token
// for a scope while it has at least TokenSafetyMargin of validity left, and
// exchanges credentials for a new one otherwise. The refresh path deletes
// all prior rows for the scope before inserting the new row, so at most one
// row per scope survives a refresh. Refreshes are serialized per scope
// within one process; concurrent invocations on other instances may still
// race, "most recently issued wins" resolves the read side.
type TokenCache struct {
	db        DB
	exchanger TokenExchanger
	now       func() time.Time

	mutexesLock sync.Mutex
	mutexes     map[Scope]*sync.Mutex
}

// NewTokenCache creates new token cache over the given store and exchanger.
func NewTokenCache(db DB, exchanger TokenExchanger) *TokenCache {
	return &TokenCache{
		db:        db,
		exchanger: exchanger,
		now:       time.Now,
		mutexes:   map[Scope]*sync.Mutex{}}
}

// GetToken returns a bearer token for the scope with at least
// TokenSafetyMargin of remaining validity. The hit path has no side effects.
func (cache *TokenCache) GetToken(scope Scope) (string, error) {
	token, err := cache.Get(scope)
	if err != nil {
		return "", err
	}
	return token.Value, nil
}

// Get works as GetToken but returns the full token record.
func (cache *TokenCache) Get(scope Scope) (*CachedToken, error) {
	token, err := cache.readCurrent(scope)
	if err != nil {
		return nil, err
	}
	if token != nil && token.IsUsable(cache.now()) {
		return token, nil
	}
	return cache.Refresh(scope)
}

// Refresh unconditionally exchanges credentials for a new token, replaces
// all stored rows for the scope with it and returns it.
func (cache *TokenCache) Refresh(scope Scope) (*CachedToken, error) {
	mutex := cache.scopeMutex(scope)
	mutex.Lock()
	defer mutex.Unlock()

	// Another caller could have refreshed while this one waited.
	token, err := cache.readCurrent(scope)
	if err != nil {
		return nil, err
	}
	if token != nil && token.IsUsable(cache.now()) {
		return token, nil
	}

	if token, err = cache.exchanger.Exchange(scope); err != nil {
		return nil, err
	}

	tx, err := cache.db.Begin()
	if err != nil {
		return nil, &PersistenceError{Cause: err}
	}
	defer tx.Rollback()
	if err := tx.DeleteScopeTokens(scope); err != nil {
		return nil, &PersistenceError{Cause: err}
	}
	if err := tx.InsertToken(token); err != nil {
		return nil, &PersistenceError{Cause: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, &PersistenceError{Cause: err}
	}
	return token, nil
}

func (cache *TokenCache) readCurrent(scope Scope) (*CachedToken, error) {
	tx, err := cache.db.Begin()
	if err != nil {
		return nil, &PersistenceError{Cause: err}
	}
	defer tx.Rollback()
	token, err := tx.FindCurrentToken(scope)
	if err != nil {
		return nil, &PersistenceError{Cause: err}
	}
	return token, nil
}

func (cache *TokenCache) scopeMutex(scope Scope) *sync.Mutex {
	cache.mutexesLock.Lock()
	defer cache.mutexesLock.Unlock()
	mutex, has := cache.mutexes[scope]
	if !has {
		mutex = &sync.Mutex{}
		cache.mutexes[scope] = mutex
	}
	return mutex
}

////////////////////////////////////////////////////////////////////////////////

type scopeCreds struct {
	tokenURL     string
	clientID     string
	clientSecret string
}

// AuthClient exchanges client credentials with the Guesty authorization
// servers using the client-credentials grant.
type AuthClient struct {
	httpClient *http.Client
	creds      map[Scope]scopeCreds
	now        func() time.Time
}

// NewAuthClient creates new authorization client for both scopes.
func NewAuthClient(settings *Settings) *AuthClient {
	return &AuthClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		creds: map[Scope]scopeCreds{
			ScopeOpenAPI: {
				tokenURL:     settings.GuestyTokenURL,
				clientID:     settings.GuestyClientID,
				clientSecret: settings.GuestyClientSecret},
			ScopeBookingEngine: {
				tokenURL:     settings.BookingEngineTokenURL,
				clientID:     settings.BookingEngineClientID,
				clientSecret: settings.BookingEngineClientSecret}},
		now: time.Now}
}

// Exchange implements TokenExchanger.
func (client *AuthClient) Exchange(scope Scope) (*CachedToken, error) {
	creds, has := client.creds[scope]
	if !has {
		return nil, fmt.Errorf(`unknown scope "%s"`, scope)
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", string(scope))
	form.Set("client_id", creds.clientID)
	form.Set("client_secret", creds.clientSecret)

	request, err := http.NewRequest(
		http.MethodPost, creds.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, &UpstreamAuthError{Scope: scope, Body: err.Error()}
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, &UpstreamAuthError{
			Scope: scope, StatusCode: response.StatusCode, Body: err.Error()}
	}
	if response.StatusCode != http.StatusOK {
		return nil, &UpstreamAuthError{
			Scope:      scope,
			StatusCode: response.StatusCode,
			Body:       string(body)}
	}

	var grant struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &grant); err != nil {
		return nil, &UpstreamAuthError{
			Scope:      scope,
			StatusCode: response.StatusCode,
			Body:       fmt.Sprintf(`failed to parse token response: "%v"`, err)}
	}
	if grant.AccessToken == "" {
		return nil, &UpstreamAuthError{
			Scope:      scope,
			StatusCode: response.StatusCode,
			Body:       "token response has no access_token"}
	}

	return newCachedToken(
		grant.AccessToken, grant.TokenType, scope,
		client.now().UTC(), time.Duration(grant.ExpiresIn)*time.Second)
}
