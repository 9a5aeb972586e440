package api

import (
	"fmt"
	"net/http"

	"github.com/badoux/checkmail"
	"github.com/londoners/londoners-aws/londoners"
)

// NewGuestSignUpLambda creates lambda to sign a guest up. The credentials
// are registered with the identity provider, the guest is created upstream,
// then recorded locally with an empty favorites list.
func (factory *lambdaFactory) NewGuestSignUpLambda() lambdaImpl {
	return &guestSignUpLambda{}
}

type guestSignUpLambda struct{ service }

func (lambda *guestSignUpLambda) Init() error { return lambda.initService() }

func (lambda *guestSignUpLambda) Methods() []string { return methodsPost() }

type guestSignUpRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	UserType  string `json:"userType"`
}

func (lambda *guestSignUpLambda) CreateRequest() interface{} {
	return &guestSignUpRequest{}
}

type guestSignUpResponse struct {
	GuestID string `json:"guest_id"`
	UserID  string `json:"user_id"`
}

func (lambda *guestSignUpLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	params := request.GetRequest().(*guestSignUpRequest)
	if params.FirstName == "" || params.LastName == "" {
		return newHTTPResponseBadParam("Guest name is not provided",
			"guest name is not provided")
	}
	if err := checkmail.ValidateFormat(params.Email); err != nil {
		return newHTTPResponseBadParam("Email address is invalid",
			`failed to validate email "%s": "%v"`, params.Email, err)
	}
	if len(params.Password) < 8 {
		return newHTTPResponseBadParam(
			"Password has to be at least 8 characters long",
			"password is too short")
	}
	userType := params.UserType
	if userType == "" {
		userType = "guest"
	}

	if _, identityErr := lambda.identity.CreateUser(
		params.Email, params.Password, londoners.JSON{
			"first_name": params.FirstName,
			"last_name":  params.LastName,
			"phone":      params.Phone,
			"user_type":  userType}); identityErr != nil {
		return newHTTPResponseFromError(identityErr)
	}

	result, callErr := lambda.guesty.CreateGuest(londoners.JSON{
		"firstName": params.FirstName,
		"lastName":  params.LastName,
		"email":     params.Email,
		"phone":     params.Phone})
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}
	guestID := result.TextChain("",
		[]interface{}{"_id"},
		[]interface{}{"id"})
	if guestID == "" {
		return newHTTPResponseInternalServerError(
			fmt.Errorf(`guest response has no ID: "%v"`, result))
	}

	user := londoners.NewUser(guestID, params.Email, params.FirstName,
		params.LastName, params.Phone, userType)
	created, txErr := lambda.storeUser(user)
	if txErr != nil {
		return newHTTPResponseInternalServerError(txErr)
	}
	if created == nil {
		return newHTTPResponseConflict("User already exists")
	}

	return newHTTPResponse(http.StatusOK, guestSignUpResponse{
		GuestID: guestID, UserID: user.ID.String()})
}

func (lambda *guestSignUpLambda) storeUser(
	user *londoners.User) (*londoners.User, error) {
	tx, err := lambda.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	created, err := tx.CreateUser(user)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

////////////////////////////////////////////////////////////////////////////////

// NewGuestInfoLambda creates lambda to get a guest record.
func (factory *lambdaFactory) NewGuestInfoLambda() lambdaImpl {
	return &guestInfoLambda{}
}

type guestInfoLambda struct{ service }

func (lambda *guestInfoLambda) Init() error { return lambda.initService() }

func (lambda *guestInfoLambda) Methods() []string { return methodsGet() }

func (lambda *guestInfoLambda) CreateRequest() interface{} { return nil }

func (lambda *guestInfoLambda) Run(
	request LambdaRequest) (*httpResponse, error) {
	guestID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}
	result, callErr := lambda.guesty.GetGuest(guestID)
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}
	return newHTTPResponse(http.StatusOK, result)
}

////////////////////////////////////////////////////////////////////////////////

// NewGuestUpdateLambda creates lambda to update a guest record.
func (factory *lambdaFactory) NewGuestUpdateLambda() lambdaImpl {
	return &guestUpdateLambda{}
}

type guestUpdateLambda struct{ service }

func (lambda *guestUpdateLambda) Init() error { return lambda.initService() }

func (lambda *guestUpdateLambda) Methods() []string { return methodsPut() }

func (lambda *guestUpdateLambda) CreateRequest() interface{} {
	return &londoners.JSON{}
}

func (lambda *guestUpdateLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	guestID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}
	fields := *request.GetRequest().(*londoners.JSON)
	if len(fields) == 0 {
		return newHTTPResponseBadParam("No fields to update",
			"update request has no fields")
	}
	if email, ok := fields.Text("email"); ok {
		if emailErr := checkmail.ValidateFormat(email); emailErr != nil {
			return newHTTPResponseBadParam("Email address is invalid",
				`failed to validate email "%s": "%v"`, email, emailErr)
		}
	}

	result, callErr := lambda.guesty.UpdateGuest(guestID, fields)
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}
	return newHTTPResponse(http.StatusOK, result)
}
