package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/londoners/londoners-aws/londoners"
)

type httpRequest = events.APIGatewayProxyRequest
type httpResponse = events.APIGatewayProxyResponse

func newHTTPResponseHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
		"Access-Control-Allow-Methods": "GET,POST,PUT,DELETE,OPTIONS",
	}
}

func newHTTPResponse(
	statusCode int, response interface{},
) (*httpResponse, error) {
	body, err := json.Marshal(response)
	if err != nil {
		londoners.Log.Error(`Failed to serialize response "%v": "%v".`,
			response, err)
		return newHTTPResponseInternalServerError(err)
	}
	return &httpResponse{
		StatusCode: statusCode,
		Headers:    newHTTPResponseHeaders(),
		Body:       string(body),
	}, nil
}

func newHTTPResponseEmpty(statusCode int) (*httpResponse, error) {
	return &httpResponse{
		StatusCode: statusCode,
		Headers:    newHTTPResponseHeaders(),
	}, nil
}

func newHTTPResponsePreflight() (*httpResponse, error) {
	return newHTTPResponseEmpty(http.StatusNoContent)
}

type errorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

func newHTTPResponseErr(
	statusCode int, message string,
) (*httpResponse, error) {
	return newHTTPResponse(statusCode, errorResponse{Error: message})
}

func newHTTPResponseBadParam(
	message string, logFormat string, logArgs ...interface{},
) (*httpResponse, error) {
	londoners.Log.Debug(logFormat, logArgs...)
	return newHTTPResponseErr(http.StatusBadRequest, message)
}

func newHTTPResponseUnauthorized(message string) (*httpResponse, error) {
	return newHTTPResponseErr(http.StatusUnauthorized, message)
}

func newHTTPResponseNotFound(message string) (*httpResponse, error) {
	return newHTTPResponseErr(http.StatusNotFound, message)
}

func newHTTPResponseConflict(message string) (*httpResponse, error) {
	return newHTTPResponseErr(http.StatusConflict, message)
}

func newHTTPResponseMethodNotAllowed(method string) (*httpResponse, error) {
	return newHTTPResponseErr(http.StatusMethodNotAllowed,
		fmt.Sprintf("Method %s is not allowed", method))
}

func newHTTPResponseInternalServerError(err error) (*httpResponse, error) {
	londoners.Log.Err(err)
	body, _ := json.Marshal(errorResponse{Error: "Internal server error"})
	return &httpResponse{
		StatusCode: http.StatusInternalServerError,
		Headers:    newHTTPResponseHeaders(),
		Body:       string(body),
	}, nil
}

// newHTTPResponseFromError maps domain errors from the upstream clients and
// the store to the matching HTTP answer. Upstream errors mirror the vendor
// status code and body so the caller sees what the vendor API answered.
func newHTTPResponseFromError(err error) (*httpResponse, error) {
	switch typedErr := err.(type) {
	case *londoners.UpstreamError:
		return newHTTPResponseUpstreamError(typedErr)
	case *londoners.UpstreamAuthError:
		londoners.Log.Err(typedErr)
		return newHTTPResponse(http.StatusInternalServerError, errorResponse{
			Error:   "Failed to authorize with the upstream API",
			Details: upstreamErrorDetails(typedErr.Body)})
	case *londoners.PersistenceError:
		return newHTTPResponseInternalServerError(typedErr)
	}
	return newHTTPResponseInternalServerError(err)
}

func newHTTPResponseUpstreamError(
	upstreamErr *londoners.UpstreamError) (*httpResponse, error) {
	londoners.Log.Debug(`Upstream request failed: "%v".`, upstreamErr)
	statusCode := upstreamErr.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}
	return newHTTPResponse(statusCode, errorResponse{
		Error:   "Upstream request failed",
		Details: upstreamErrorDetails(upstreamErr.Body)})
}

// upstreamErrorDetails keeps the upstream error body readable in the answer:
// JSON bodies are embedded as is, anything else as a string.
func upstreamErrorDetails(body string) interface{} {
	if body == "" {
		return nil
	}
	var parsed interface{}
	if json.Unmarshal([]byte(body), &parsed) == nil {
		return parsed
	}
	return body
}
