package api

import (
	"net/http"
	"time"

	"github.com/londoners/londoners-aws/londoners"
)

// NewTokenRefreshLambda creates lambda to refresh the Open API token.
func (factory *lambdaFactory) NewTokenRefreshLambda() lambdaImpl {
	return &tokenRefreshLambda{scope: londoners.ScopeOpenAPI}
}

// NewBookingEngineTokenRefreshLambda creates lambda to refresh the Booking
// Engine token.
func (factory *lambdaFactory) NewBookingEngineTokenRefreshLambda() lambdaImpl {
	return &tokenRefreshLambda{scope: londoners.ScopeBookingEngine}
}

type tokenRefreshLambda struct {
	service
	scope londoners.Scope
}

func (lambda *tokenRefreshLambda) Init() error { return lambda.initService() }

func (lambda *tokenRefreshLambda) Methods() []string { return methodsPost() }

func (lambda *tokenRefreshLambda) CreateRequest() interface{} { return nil }

type tokenResponse struct {
	Scope     string `json:"scope"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

// Run keeps the stored token of the scope fresh. Get refreshes only when
// the stored token is within the safety margin, so the periodic invocation
// is a no-op while the token is still good.
func (lambda *tokenRefreshLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	token, err := lambda.tokens.Get(lambda.scope)
	if err != nil {
		return newHTTPResponseFromError(err)
	}

	return newHTTPResponse(http.StatusOK, tokenResponse{
		Scope:     string(lambda.scope),
		TokenType: token.TokenType,
		ExpiresIn: token.ExpiresIn(time.Now().UTC())})
}
