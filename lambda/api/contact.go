package api

import (
	"net/http"

	"github.com/badoux/checkmail"
	"github.com/londoners/londoners-aws/londoners"
)

// NewContactUsLambda creates lambda to forward a contact-form message to
// the site mailbox.
func (factory *lambdaFactory) NewContactUsLambda() lambdaImpl {
	return &contactUsLambda{}
}

type contactUsLambda struct {
	service
	email londoners.EmailService
}

func (lambda *contactUsLambda) Init() error {
	if err := lambda.initService(); err != nil {
		return err
	}
	email, err := londoners.NewEmailService(lambda.settings)
	if err != nil {
		return err
	}
	lambda.email = email
	return nil
}

func (lambda *contactUsLambda) Methods() []string { return methodsPost() }

type contactUsRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (lambda *contactUsLambda) CreateRequest() interface{} {
	return &contactUsRequest{}
}

type contactUsResponse struct {
	Success bool `json:"success"`
}

func (lambda *contactUsLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	params := request.GetRequest().(*contactUsRequest)
	if params.Name == "" {
		return newHTTPResponseBadParam("Name is not provided",
			"name is not provided")
	}
	if err := checkmail.ValidateFormat(params.Email); err != nil {
		return newHTTPResponseBadParam("Email address is invalid",
			`failed to validate email "%s": "%v"`, params.Email, err)
	}
	if params.Subject == "" {
		return newHTTPResponseBadParam("Subject is not provided",
			"subject is not provided")
	}
	if params.Message == "" {
		return newHTTPResponseBadParam("Message is not provided",
			"message is not provided")
	}

	if err := lambda.email.SendContactMessage(
		params.Name, params.Email, params.Subject,
		params.Message); err != nil {
		return newHTTPResponseInternalServerError(err)
	}
	return newHTTPResponse(http.StatusOK, contactUsResponse{Success: true})
}
