package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"reflect"

	aws "github.com/aws/aws-lambda-go/lambda"
	"github.com/londoners/londoners-aws/londoners"
)

// Lambda describes API lambda interface.
type Lambda interface {
	Start()
}

// NewLambda creates lambda by name.
func NewLambda(name string) Lambda {
	impl, err := newLambdaFactory().NewLambdaImpl(name)
	if err != nil {
		log.Panicf(`Failed to create lambda: "%v".`, err)
	}
	if err := impl.Init(); err != nil {
		log.Panicf(`Failed to init lambda: "%v".`, err)
	}
	return &lambda{impl: impl}
}

type lambdaImpl interface {
	Init() error
	Methods() []string
	CreateRequest() interface{}
	Run(LambdaRequest) (*httpResponse, error)
}

type lambdaFactory struct{}

func newLambdaFactory() *lambdaFactory { return &lambdaFactory{} }

// NewLambdaImpl creates new API lambda implementation.
func (factory *lambdaFactory) NewLambdaImpl(name string) (lambdaImpl, error) {
	method := reflect.ValueOf(factory).MethodByName("New" + name + "Lambda")
	if (method == reflect.Value{}) {
		return nil, fmt.Errorf(`failed to find lambda with name: "%s"`, name)
	}
	return method.Call([]reflect.Value{})[0].Interface().(lambdaImpl), nil
}

type lambda struct{ impl lambdaImpl }

func (lambda *lambda) Start() {
	aws.Start(
		func(httpRequest *httpRequest) (*httpResponse, error) {
			request := lambdaRequest{Request: httpRequest}
			request.Execute(lambda.impl)
			return request.Response, request.ResponseErr
		})
}

// LambdaRequest describes request to lambda.
type LambdaRequest interface {
	GetRequest() interface{}
	GetHTTPRequest() *httpRequest
	GetPathArgs() map[string]string
	GetQueryArgs() map[string]string
	GetAuthHeader() string

	ReadQueryArgString(name string) (string, error)
}

type lambdaRequest struct {
	Request     *httpRequest
	Response    *httpResponse
	ResponseErr error

	implRequest interface{}
}

func (request *lambdaRequest) dumpRequest() {
	dump, err := json.Marshal(request.Request)
	if err != nil {
		log.Printf(`Failed to dump request "%v": "%v".`, *request.Request, err)
		return
	}
	log.Println(string(dump))
}

func (request *lambdaRequest) dumpResponse() {
	if request.ResponseErr != nil {
		log.Printf(`Request returned error: "%v".`, request.ResponseErr)
	}
	if request.Response == nil {
		log.Println(`No response.`)
		return
	}
	dump, err := json.Marshal(request.Response)
	if err != nil {
		log.Printf(`Failed to dump response "%v": "%v".`, *request.Response,
			err)
		return
	}
	log.Println(string(dump))
}

func (request *lambdaRequest) parseBody(
	result interface{}) (*httpResponse, error) {
	if err := json.Unmarshal([]byte(request.Request.Body), result); err != nil {
		return newHTTPResponseBadParam("Request is not valid JSON object",
			`failed to parse request "%s": "%v"`, request.Request.Body, err)
	}
	return nil, nil
}

func (request *lambdaRequest) method() string {
	if request.Request.HTTPMethod != "" {
		return request.Request.HTTPMethod
	}
	return request.Request.RequestContext.HTTPMethod
}

func (request *lambdaRequest) isMethodAllowed(impl lambdaImpl) bool {
	method := request.method()
	for _, allowed := range impl.Methods() {
		if method == allowed {
			return true
		}
	}
	return false
}

func (request *lambdaRequest) Execute(impl lambdaImpl) {

	if londoners.IsDev() {
		request.dumpRequest()
		defer request.dumpResponse()
	}

	// Preflight always succeeds with the permissive CORS headers.
	if request.method() == http.MethodOptions {
		request.Response, request.ResponseErr = newHTTPResponsePreflight()
		return
	}

	if !request.isMethodAllowed(impl) {
		request.Response, request.ResponseErr =
			newHTTPResponseMethodNotAllowed(request.method())
		return
	}

	request.implRequest = impl.CreateRequest()
	if request.implRequest != nil {
		switch request.method() {
		case http.MethodPost, http.MethodPut:
			request.Response, request.ResponseErr = request.parseBody(
				request.implRequest)
			if request.Response != nil || request.ResponseErr != nil {
				return
			}
		}
	}

	request.Response, request.ResponseErr = impl.Run(request)
	if request.ResponseErr != nil && request.Response == nil {
		// No error may leave the handler boundary as a bare lambda error,
		// the client always gets the JSON envelope.
		request.Response, request.ResponseErr =
			newHTTPResponseInternalServerError(request.ResponseErr)
	}
}

func (request *lambdaRequest) GetRequest() interface{} {
	return request.implRequest
}

func (request *lambdaRequest) GetHTTPRequest() *httpRequest {
	return request.Request
}

func (request *lambdaRequest) GetPathArgs() map[string]string {
	return request.Request.PathParameters
}

func (request *lambdaRequest) GetQueryArgs() map[string]string {
	return request.Request.QueryStringParameters
}

func (request *lambdaRequest) GetAuthHeader() string {
	if value, has := request.Request.Headers["Authorization"]; has {
		return value
	}
	return request.Request.Headers["authorization"]
}

func (request *lambdaRequest) ReadQueryArgString(name string) (string, error) {
	value, has := request.Request.QueryStringParameters[name]
	if !has || value == "" {
		return "", fmt.Errorf(`query argument "%s" is not provided`, name)
	}
	return value, nil
}
