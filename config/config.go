package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port      string `envconfig:"PORT" default:"8080"`
	AppEnv    string `envconfig:"APP_ENV" default:"development"`
	DBURL     string `envconfig:"DB_URL" required:"true"`
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
	SiteURL   string `envconfig:"SITE_URL" required:"true"`

	CORSOrigin string `envconfig:"CORS_ORIGIN"`

	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY" required:"true"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET" required:"true"`
	PriceIDs

	// When set, checkout goes through the hosted function instead of Stripe directly.
	CheckoutFunctionURL string `envconfig:"CHECKOUT_FUNCTION_URL"`
	CheckoutFunctionKey string `envconfig:"CHECKOUT_FUNCTION_KEY"`

	GoogleClientID         string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret     string `envconfig:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL      string `envconfig:"GOOGLE_REDIRECT_URL"`
	GoogleFrontendRedirect string `envconfig:"GOOGLE_FRONTEND_REDIRECT"`

	PostmarkServerToken  string `envconfig:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `envconfig:"POSTMARK_ACCOUNT_TOKEN"`
	MailFrom             string `envconfig:"MAIL_FROM" default:"hello@creator.app"`

	LoginRatePerMinute int `envconfig:"LOGIN_RATE_PER_MINUTE" default:"10"`

	// DotEnvLoaded reports whether a .env file was read. The logger does not
	// exist yet when Load runs, so main reports it.
	DotEnvLoaded bool `ignored:"true"`
}

// PriceIDs maps each plan and billing cycle to a Stripe price. Any of them may be
// empty; checkout for an unmapped pair is rejected at request time.
type PriceIDs struct {
	CreatorMonthly    string `envconfig:"STRIPE_PRICE_CREATOR_MONTHLY"`
	CreatorYearly     string `envconfig:"STRIPE_PRICE_CREATOR_YEARLY"`
	InfluencerMonthly string `envconfig:"STRIPE_PRICE_INFLUENCER_MONTHLY"`
	InfluencerYearly  string `envconfig:"STRIPE_PRICE_INFLUENCER_YEARLY"`
	SuperstarMonthly  string `envconfig:"STRIPE_PRICE_SUPERSTAR_MONTHLY"`
	SuperstarYearly   string `envconfig:"STRIPE_PRICE_SUPERSTAR_YEARLY"`
}

// Load reads .env (if any) and the process environment. A missing required
// variable is returned as an error naming it.
func Load() (*Config, error) {
	loaded := godotenv.Load() == nil

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	cfg.DotEnvLoaded = loaded
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

func (c *Config) PostmarkEnabled() bool {
	return c.PostmarkServerToken != "" && c.PostmarkAccountToken != ""
}
