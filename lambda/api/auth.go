package api

import (
	"net/http"
	"strings"

	"github.com/londoners/londoners-aws/londoners"
)

// NewGuestLoginLambda creates lambda to exchange guest credentials for a
// session.
func (factory *lambdaFactory) NewGuestLoginLambda() lambdaImpl {
	return &guestLoginLambda{}
}

type guestLoginLambda struct{ service }

func (lambda *guestLoginLambda) Init() error { return lambda.initService() }

func (lambda *guestLoginLambda) Methods() []string { return methodsPost() }

type guestLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (lambda *guestLoginLambda) CreateRequest() interface{} {
	return &guestLoginRequest{}
}

func (lambda *guestLoginLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	params := request.GetRequest().(*guestLoginRequest)
	if params.Email == "" || params.Password == "" {
		return newHTTPResponseBadParam(
			"Email and password are required",
			"email or password is not provided")
	}

	result, signInErr := lambda.identity.SignIn(
		params.Email, params.Password)
	if signInErr != nil {
		// Only a credentials rejection becomes 401, an identity provider
		// outage keeps its own status.
		if upstreamErr, isUpstream :=
			signInErr.(*londoners.UpstreamError); isUpstream &&
			isCredentialsRejection(upstreamErr.StatusCode) {
			londoners.Log.Debug(`Failed to sign in "%s": "%v".`,
				params.Email, signInErr)
			return newHTTPResponseUnauthorized("Invalid login credentials")
		}
		return newHTTPResponseFromError(signInErr)
	}
	return newHTTPResponse(http.StatusOK, result)
}

func isCredentialsRejection(statusCode int) bool {
	return statusCode == http.StatusBadRequest ||
		statusCode == http.StatusUnauthorized ||
		statusCode == http.StatusUnprocessableEntity
}

////////////////////////////////////////////////////////////////////////////////

// NewGuestSignOutLambda creates lambda to revoke the session given in the
// authorization header.
func (factory *lambdaFactory) NewGuestSignOutLambda() lambdaImpl {
	return &guestSignOutLambda{}
}

type guestSignOutLambda struct{ service }

func (lambda *guestSignOutLambda) Init() error {
	return lambda.initService()
}

func (lambda *guestSignOutLambda) Methods() []string { return methodsPost() }

func (lambda *guestSignOutLambda) CreateRequest() interface{} { return nil }

type guestSignOutResponse struct {
	Success bool `json:"success"`
}

func (lambda *guestSignOutLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	auth := request.GetAuthHeader()
	if auth == "" {
		return newHTTPResponseUnauthorized(
			"Authorization header is not provided")
	}
	accessToken := strings.TrimPrefix(auth, "Bearer ")

	if signOutErr := lambda.identity.SignOut(accessToken); signOutErr != nil {
		return newHTTPResponseFromError(signOutErr)
	}
	return newHTTPResponse(http.StatusOK, guestSignOutResponse{Success: true})
}
