package londoners

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// StripeClient creates setup intents on the Stripe API so the front end can
// collect a card for later off-session charges.
type StripeClient struct {
	httpClient *http.Client
	apiURL     string
	secretKey  string
}

// NewStripeClient creates new Stripe API client.
func NewStripeClient(settings *Settings) *StripeClient {
	return &StripeClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiURL:     settings.StripeAPIURL,
		secretKey:  settings.StripeSecretKey}
}

// CreateSetupIntent creates a setup intent for the given payment method
// types. The customer is optional.
func (client *StripeClient) CreateSetupIntent(
	customerID, usage string, paymentMethodTypes []string) (JSON, error) {

	form := url.Values{}
	form.Set("usage", usage)
	for _, methodType := range paymentMethodTypes {
		form.Add("payment_method_types[]", methodType)
	}
	if customerID != "" {
		form.Set("customer", customerID)
	}

	request, err := http.NewRequest(http.MethodPost,
		client.apiURL+"/setup_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Authorization", "Bearer "+client.secretKey)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, &UpstreamError{Body: err.Error()}
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, &UpstreamError{
			StatusCode: response.StatusCode, Body: err.Error()}
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, &UpstreamError{
			StatusCode: response.StatusCode, Body: string(body)}
	}

	result := JSON{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &UpstreamError{
			StatusCode: response.StatusCode, Body: string(body)}
	}
	return result, nil
}
