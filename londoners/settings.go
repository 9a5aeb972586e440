package londoners

import (
	"fmt"
	"strings"
	"time"

	"github.com/allisson/go-env"
)

// Version is a product version. Set by builder.
var Version = ""

// IsDev returns true if build is not production.
func IsDev() bool { return Version == "dev" }

// TokenSafetyMargin is the minimum remaining lifetime a cached Guesty token
// must have to be handed out without a refresh.
const TokenSafetyMargin = 5 * time.Minute

// NearbyListingRadiusKM is the default search radius for nearby listings.
const NearbyListingRadiusKM = 3.0

// Settings describes per-deployment configuration. It is read once from the
// environment at lambda cold start and never mutated.
type Settings struct {
	DatabaseURL string

	GuestyTokenURL     string
	GuestyClientID     string
	GuestyClientSecret string

	BookingEngineTokenURL     string
	BookingEngineClientID     string
	BookingEngineClientSecret string

	GuestyAPIURL        string
	GuestyPayURL        string
	BookingEngineAPIURL string

	IdentityAPIURL     string
	IdentityAnonKey    string
	IdentityServiceKey string

	SendGridAPIKey   string
	EmailFromName    string
	EmailFromAddress string
	ReviewFormURL    string

	StripeAPIURL    string
	StripeSecretKey string

	ChargeAutomationAccountID string
	ChargeAutomationAPIKey    string

	SentryDSN string
}

// NewSettings reads settings from the environment.
func NewSettings() (*Settings, error) {
	result := &Settings{
		DatabaseURL: env.GetString("DATABASE_URL", ""),

		GuestyTokenURL:     env.GetString("GUESTY_TOKEN_URL", "https://open-api.guesty.com/oauth2/token"),
		GuestyClientID:     env.GetString("GUESTY_CLIENT_ID", ""),
		GuestyClientSecret: env.GetString("GUESTY_CLIENT_SECRET", ""),

		BookingEngineTokenURL:     env.GetString("GUESTY_BOOKING_ENGINE_TOKEN_URL", "https://booking.guesty.com/oauth2/token"),
		BookingEngineClientID:     env.GetString("GUESTY_BOOKING_ENGINE_CLIENT_ID", ""),
		BookingEngineClientSecret: env.GetString("GUESTY_BOOKING_ENGINE_CLIENT_SECRET", ""),

		GuestyAPIURL:        env.GetString("GUESTY_API_URL", "https://open-api.guesty.com/v1"),
		GuestyPayURL:        env.GetString("GUESTY_PAY_URL", "https://pay.guesty.com/api"),
		BookingEngineAPIURL: env.GetString("GUESTY_BOOKING_ENGINE_API_URL", "https://booking.guesty.com/api"),

		IdentityAPIURL:     env.GetString("IDENTITY_API_URL", ""),
		IdentityAnonKey:    env.GetString("IDENTITY_ANON_KEY", ""),
		IdentityServiceKey: env.GetString("IDENTITY_SERVICE_KEY", ""),

		SendGridAPIKey:   env.GetString("SENDGRID_API_KEY", ""),
		EmailFromName:    env.GetString("EMAIL_FROM_NAME", "Londoners"),
		EmailFromAddress: env.GetString("EMAIL_FROM_ADDRESS", "info@londoners.com"),
		ReviewFormURL:    env.GetString("REVIEW_FORM_URL", "https://londoners.com/rate"),

		StripeAPIURL:    env.GetString("STRIPE_API_URL", "https://api.stripe.com/v1"),
		StripeSecretKey: env.GetString("STRIPE_SECRET_KEY", ""),

		ChargeAutomationAccountID: env.GetString("CHARGE_AUTOMATION_ACCOUNT_ID", ""),
		ChargeAutomationAPIKey:    env.GetString("CHARGE_AUTOMATION_API_KEY", ""),

		SentryDSN: env.GetString("SENTRY_DSN", ""),
	}
	if result.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	return result, nil
}

// CheckSendGridAPIKey validates the static SendGrid key format.
func (settings *Settings) CheckSendGridAPIKey() error {
	key := settings.SendGridAPIKey
	if key == "" {
		return fmt.Errorf("SENDGRID_API_KEY is not set")
	}
	if !strings.HasPrefix(key, "SG.") || len(key) <= 20 {
		return fmt.Errorf("SENDGRID_API_KEY has invalid format")
	}
	return nil
}
