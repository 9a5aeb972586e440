package api

import (
	"net/http"

	"github.com/londoners/londoners-aws/londoners"
)

// NewCardTokenizeLambda creates lambda to tokenize a card with the Guesty
// Pay tokenization endpoint. The card payload is passed through, card data
// is never stored or logged.
func (factory *lambdaFactory) NewCardTokenizeLambda() lambdaImpl {
	return &cardTokenizeLambda{}
}

type cardTokenizeLambda struct{ service }

func (lambda *cardTokenizeLambda) Init() error { return lambda.initService() }

func (lambda *cardTokenizeLambda) Methods() []string { return methodsPost() }

func (lambda *cardTokenizeLambda) CreateRequest() interface{} {
	return &londoners.JSON{}
}

func (lambda *cardTokenizeLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	payload := *request.GetRequest().(*londoners.JSON)
	if response, err := checkTokenizePayload(payload); response != nil ||
		err != nil {
		return response, err
	}
	result, callErr := lambda.guesty.TokenizeCard(payload)
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}
	return newHTTPResponse(http.StatusOK, result)
}

func checkTokenizePayload(payload londoners.JSON) (*httpResponse, error) {
	if _, ok := payload.Text("listingId"); !ok {
		return newHTTPResponseBadParam("Listing ID is not provided",
			"listing ID is not provided")
	}
	card, hasCard := payload.Object("card")
	if !hasCard {
		return newHTTPResponseBadParam("Card is not provided",
			"card object is not provided")
	}
	for _, field := range []string{"number", "exp_month", "exp_year", "cvc"} {
		if card.Get(field) == nil {
			return newHTTPResponseBadParam(
				"Card number, expiry and CVC are required",
				"card field %q is not provided", field)
		}
	}
	billing, hasBilling := payload.Object("billing_details")
	if !hasBilling {
		return newHTTPResponseBadParam("Billing details are not provided",
			"billing details are not provided")
	}
	if _, ok := billing.Text("name"); !ok {
		return newHTTPResponseBadParam("Billing name is not provided",
			"billing name is not provided")
	}
	address, hasAddress := billing.Object("address")
	if !hasAddress {
		return newHTTPResponseBadParam("Billing address is not provided",
			"billing address is not provided")
	}
	for _, field := range []string{
		"line1", "city", "postal_code", "country"} {
		if address.Get(field) == nil {
			return newHTTPResponseBadParam(
				"Billing address is incomplete",
				"billing address field %q is not provided", field)
		}
	}
	return nil, nil
}

////////////////////////////////////////////////////////////////////////////////

// NewPaymentMethodCreateLambda creates lambda to attach a tokenized card to
// a guest.
func (factory *lambdaFactory) NewPaymentMethodCreateLambda() lambdaImpl {
	return &paymentMethodCreateLambda{}
}

type paymentMethodCreateLambda struct{ service }

func (lambda *paymentMethodCreateLambda) Init() error {
	return lambda.initService()
}

func (lambda *paymentMethodCreateLambda) Methods() []string {
	return methodsPost()
}

func (lambda *paymentMethodCreateLambda) CreateRequest() interface{} {
	return &londoners.JSON{}
}

func (lambda *paymentMethodCreateLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	guestID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}
	method := *request.GetRequest().(*londoners.JSON)
	if _, ok := method.Text("token"); !ok {
		if _, ok := method.Text("_id"); !ok {
			return newHTTPResponseBadParam("Card token is not provided",
				"payment method request has no token")
		}
	}
	result, callErr := lambda.guesty.CreatePaymentMethod(guestID, method)
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}
	return newHTTPResponse(http.StatusOK, result)
}

////////////////////////////////////////////////////////////////////////////////

// NewPaymentMethodListLambda creates lambda to list stored payment methods
// of a guest.
func (factory *lambdaFactory) NewPaymentMethodListLambda() lambdaImpl {
	return &paymentMethodListLambda{}
}

type paymentMethodListLambda struct{ service }

func (lambda *paymentMethodListLambda) Init() error {
	return lambda.initService()
}

func (lambda *paymentMethodListLambda) Methods() []string {
	return methodsGet()
}

func (lambda *paymentMethodListLambda) CreateRequest() interface{} {
	return nil
}

func (lambda *paymentMethodListLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	guestID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}
	result, callErr := lambda.guesty.GetPaymentMethods(
		guestID, forwardedQuery(request))
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}
	return newHTTPResponse(http.StatusOK, result)
}

////////////////////////////////////////////////////////////////////////////////

// NewPaymentAddLambda creates lambda to record a manual payment on a
// reservation.
func (factory *lambdaFactory) NewPaymentAddLambda() lambdaImpl {
	return &paymentAddLambda{}
}

type paymentAddLambda struct{ service }

func (lambda *paymentAddLambda) Init() error { return lambda.initService() }

func (lambda *paymentAddLambda) Methods() []string { return methodsPost() }

func (lambda *paymentAddLambda) CreateRequest() interface{} {
	return &londoners.JSON{}
}

func (lambda *paymentAddLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	reservationID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}
	payment := *request.GetRequest().(*londoners.JSON)
	amount, hasAmount := payment.Number("amount")
	if !hasAmount || amount <= 0 {
		return newHTTPResponseBadParam("Amount has to be positive",
			"payment amount %v is not positive", payment.Get("amount"))
	}
	result, callErr := lambda.guesty.AddPayment(reservationID, payment)
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}
	return newHTTPResponse(http.StatusOK, result)
}

////////////////////////////////////////////////////////////////////////////////

// NewPaymentRefundLambda creates lambda to refund a payment of a
// reservation.
func (factory *lambdaFactory) NewPaymentRefundLambda() lambdaImpl {
	return &paymentRefundLambda{}
}

type paymentRefundLambda struct{ service }

func (lambda *paymentRefundLambda) Init() error { return lambda.initService() }

func (lambda *paymentRefundLambda) Methods() []string { return methodsPost() }

type paymentRefundRequest struct {
	Amount float64 `json:"amount"`
	Note   string  `json:"note"`
}

func (lambda *paymentRefundLambda) CreateRequest() interface{} {
	return &paymentRefundRequest{}
}

func (lambda *paymentRefundLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	reservationID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}
	paymentID, response, err := readPathArg(request, "paymentId")
	if response != nil || err != nil {
		return response, err
	}
	params := request.GetRequest().(*paymentRefundRequest)
	if params.Amount <= 0 {
		return newHTTPResponseBadParam("Amount has to be positive",
			"refund amount %v is not positive", params.Amount)
	}

	result, callErr := lambda.guesty.RefundPayment(
		reservationID, paymentID, params.Amount, params.Note)
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}
	return newHTTPResponse(http.StatusOK, result)
}

////////////////////////////////////////////////////////////////////////////////

// NewInvoiceItemCreateLambda creates lambda to add an invoice item to a
// reservation.
func (factory *lambdaFactory) NewInvoiceItemCreateLambda() lambdaImpl {
	return &invoiceItemCreateLambda{}
}

type invoiceItemCreateLambda struct{ service }

func (lambda *invoiceItemCreateLambda) Init() error {
	return lambda.initService()
}

func (lambda *invoiceItemCreateLambda) Methods() []string {
	return methodsPost()
}

func (lambda *invoiceItemCreateLambda) CreateRequest() interface{} {
	return &londoners.JSON{}
}

func (lambda *invoiceItemCreateLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	reservationID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}
	item := *request.GetRequest().(*londoners.JSON)
	if _, ok := item.Text("title"); !ok {
		return newHTTPResponseBadParam("Invoice item title is not provided",
			"invoice item request has no title")
	}
	if _, ok := item.Number("amount"); !ok {
		return newHTTPResponseBadParam(
			"Invoice item amount is not provided",
			"invoice item request has no amount")
	}
	result, callErr := lambda.guesty.CreateInvoiceItem(reservationID, item)
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}
	return newHTTPResponse(http.StatusOK, result)
}

////////////////////////////////////////////////////////////////////////////////

// NewChargeAutomationHashLambda creates lambda to sign a Charge Automation
// iframe order.
func (factory *lambdaFactory) NewChargeAutomationHashLambda() lambdaImpl {
	return &chargeAutomationHashLambda{}
}

type chargeAutomationHashLambda struct{ service }

func (lambda *chargeAutomationHashLambda) Init() error {
	return lambda.initService()
}

func (lambda *chargeAutomationHashLambda) Methods() []string {
	return methodsPost()
}

type chargeAutomationHashRequest struct {
	OrderID              string  `json:"order_id"`
	Amount               float64 `json:"amount"`
	Currency             string  `json:"currency"`
	ChargebackProtection string  `json:"chargeback_protection"`
}

func (lambda *chargeAutomationHashLambda) CreateRequest() interface{} {
	return &chargeAutomationHashRequest{}
}

type chargeAutomationHashResponse struct {
	AccountID string `json:"account_id"`
	Hash      string `json:"hash"`
}

func (lambda *chargeAutomationHashLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	params := request.GetRequest().(*chargeAutomationHashRequest)
	if params.OrderID == "" {
		return newHTTPResponseBadParam("Order ID is not provided",
			"order ID is not provided")
	}
	if params.Amount <= 0 {
		return newHTTPResponseBadParam("Amount has to be positive",
			"order amount %v is not positive", params.Amount)
	}
	if params.Currency == "" {
		return newHTTPResponseBadParam("Currency is not provided",
			"currency is not provided")
	}
	chargebackProtection := params.ChargebackProtection
	if chargebackProtection == "" {
		chargebackProtection = "false"
	}

	hash := londoners.ChargeAutomationHash(
		lambda.settings.ChargeAutomationAccountID,
		params.OrderID, params.Amount, params.Currency,
		chargebackProtection, lambda.settings.ChargeAutomationAPIKey)
	return newHTTPResponse(http.StatusOK, chargeAutomationHashResponse{
		AccountID: lambda.settings.ChargeAutomationAccountID, Hash: hash})
}

////////////////////////////////////////////////////////////////////////////////

// NewGuestReservationPaymentMethodsLambda creates lambda to list payment
// methods attached to the guest of a reservation.
func (factory *lambdaFactory) NewGuestReservationPaymentMethodsLambda() lambdaImpl {
	return &guestReservationPaymentMethodsLambda{}
}

type guestReservationPaymentMethodsLambda struct{ service }

func (lambda *guestReservationPaymentMethodsLambda) Init() error {
	return lambda.initService()
}

func (lambda *guestReservationPaymentMethodsLambda) Methods() []string {
	return methodsGet()
}

func (lambda *guestReservationPaymentMethodsLambda) CreateRequest() interface{} {
	return nil
}

func (lambda *guestReservationPaymentMethodsLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	reservationID, response, err := readPathArg(request, "id")
	if response != nil || err != nil {
		return response, err
	}

	reservation, callErr := lambda.guesty.GetReservation(reservationID, nil)
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}
	guestID := reservation.TextChain("",
		[]interface{}{"guestId"},
		[]interface{}{"guest", "_id"})
	if guestID == "" {
		return newHTTPResponseNotFound("Reservation has no guest")
	}

	result, callErr := lambda.guesty.GetPaymentMethods(guestID, nil)
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}
	return newHTTPResponse(http.StatusOK, result)
}

////////////////////////////////////////////////////////////////////////////////

// NewSetupIntentCreateLambda creates lambda to create a Stripe setup intent
// for saving a card off-session.
func (factory *lambdaFactory) NewSetupIntentCreateLambda() lambdaImpl {
	return &setupIntentCreateLambda{}
}

type setupIntentCreateLambda struct{ service }

func (lambda *setupIntentCreateLambda) Init() error {
	return lambda.initService()
}

func (lambda *setupIntentCreateLambda) Methods() []string {
	return methodsPost()
}

type setupIntentCreateRequest struct {
	CustomerID         string   `json:"customer_id"`
	Usage              string   `json:"usage"`
	PaymentMethodTypes []string `json:"payment_method_types"`
}

func (lambda *setupIntentCreateLambda) CreateRequest() interface{} {
	return &setupIntentCreateRequest{}
}

type setupIntentCreateResponse struct {
	ClientSecret  string `json:"client_secret"`
	SetupIntentID string `json:"setup_intent_id"`
	Status        string `json:"status"`
}

func (lambda *setupIntentCreateLambda) Run(
	request LambdaRequest) (*httpResponse, error) {

	params := request.GetRequest().(*setupIntentCreateRequest)
	usage := params.Usage
	if usage == "" {
		usage = "off_session"
	}
	methodTypes := params.PaymentMethodTypes
	if len(methodTypes) == 0 {
		methodTypes = []string{"card"}
	}

	result, callErr := lambda.stripe.CreateSetupIntent(
		params.CustomerID, usage, methodTypes)
	if callErr != nil {
		return newHTTPResponseFromError(callErr)
	}

	response := setupIntentCreateResponse{}
	response.ClientSecret, _ = result.Text("client_secret")
	response.SetupIntentID, _ = result.Text("id")
	response.Status, _ = result.Text("status")
	return newHTTPResponse(http.StatusOK, response)
}
