package api

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/londoners/londoners-aws/londoners"
)

// service aggregates the shared dependencies of API lambdas. Each lambda
// implementation embeds it and calls initService from Init.
type service struct {
	settings *londoners.Settings
	db       londoners.DB
	tokens   *londoners.TokenCache
	guesty   *londoners.GuestyClient
	booking  *londoners.BookingEngineClient
	identity *londoners.IdentityClient
	stripe   *londoners.StripeClient
}

func (service *service) initService() error {
	settings, err := londoners.NewSettings()
	if err != nil {
		return fmt.Errorf(`failed to read settings: "%v"`, err)
	}
	service.settings = settings

	londoners.InitProductLog("londoners", "londoners-aws", "api",
		settings.SentryDSN)

	service.db, err = londoners.NewDB(settings)
	if err != nil {
		return fmt.Errorf(`failed to connect to database: "%v"`, err)
	}

	service.tokens = londoners.NewTokenCache(service.db,
		londoners.NewAuthClient(settings))
	service.guesty = londoners.NewGuestyClient(settings, service.tokens)
	service.booking = londoners.NewBookingEngineClient(settings,
		service.tokens)
	service.identity = londoners.NewIdentityClient(settings)
	service.stripe = londoners.NewStripeClient(settings)
	return nil
}

func readPathArg(
	request LambdaRequest, name string) (string, *httpResponse, error) {
	value, has := request.GetPathArgs()[name]
	if !has || value == "" {
		response, err := newHTTPResponseBadParam(
			fmt.Sprintf("Path argument %q is not provided", name),
			`path argument "%s" is not provided`, name)
		return "", response, err
	}
	return value, nil, nil
}

func forwardedQuery(request LambdaRequest) url.Values {
	query := url.Values{}
	for name, value := range request.GetQueryArgs() {
		if value != "" {
			query.Set(name, value)
		}
	}
	return query
}

func methodsGet() []string    { return []string{http.MethodGet} }
func methodsPost() []string   { return []string{http.MethodPost} }
func methodsPut() []string    { return []string{http.MethodPut} }
func methodsDelete() []string { return []string{http.MethodDelete} }
