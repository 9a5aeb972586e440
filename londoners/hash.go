package londoners

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// ChargeAutomationHash signs a Charge Automation iframe order. The hash is
// SHA-256 over the concatenation of account ID, order ID, amount with two
// decimal places, currency, chargeback-protection flag and the API key, in
// that order.
func ChargeAutomationHash(
	accountID, orderID string,
	amount float64,
	currency, chargebackProtection, apiKey string) string {
	data := fmt.Sprintf("%s%s%s%s%s%s",
		accountID, orderID, strconv.FormatFloat(amount, 'f', 2, 64),
		currency, chargebackProtection, apiKey)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}
