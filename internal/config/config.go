package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port    string `mapstructure:"PORT"`
	GinMode string `mapstructure:"GIN_MODE"`

	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`

	JWTSecret   string `mapstructure:"JWT_SECRET"`
	AdminAPIKey string `mapstructure:"ADMIN_API_KEY"`

	// RevenueCat: the webhook secret authenticates inbound entitlement events,
	// the API key authorizes the best-effort attribute sync back to the
	// provider.
	RevenueCatAPIKey        string `mapstructure:"REVENUECAT_API_KEY"`
	RevenueCatWebhookSecret string `mapstructure:"REVENUECAT_WEBHOOK_SECRET"`

	RunPodEndpointURL string `mapstructure:"RUNPOD_ENDPOINT_URL"`
	RunPodAPIKey      string `mapstructure:"RUNPOD_API_KEY"`

	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`

	ClientURL    string `mapstructure:"CLIENT_URL"`
	KeepAliveURL string `mapstructure:"KEEPALIVE_URL"`
}

// LoadConfig loads configuration from environment variables using Viper.
func LoadConfig() (*Config, error) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("GIN_MODE", "debug")

	for _, key := range []string{
		"PORT",
		"GIN_MODE",
		"FIREBASE_PROJECT_ID",
		"GOOGLE_APPLICATION_CREDENTIALS",
		"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
		"JWT_SECRET",
		"ADMIN_API_KEY",
		"REVENUECAT_API_KEY",
		"REVENUECAT_WEBHOOK_SECRET",
		"RUNPOD_ENDPOINT_URL",
		"RUNPOD_API_KEY",
		"CLOUDINARY_CLOUD_NAME",
		"CLOUDINARY_API_KEY",
		"CLOUDINARY_API_SECRET",
		"CLIENT_URL",
		"KEEPALIVE_URL",
	} {
		viper.BindEnv(key)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if cfg.FirebaseProjectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.AdminAPIKey == "" {
		return nil, errors.New("ADMIN_API_KEY is required")
	}
	if cfg.RevenueCatWebhookSecret == "" {
		return nil, errors.New("REVENUECAT_WEBHOOK_SECRET is required")
	}
	if cfg.RunPodEndpointURL == "" || cfg.RunPodAPIKey == "" {
		return nil, errors.New("RUNPOD_ENDPOINT_URL and RUNPOD_API_KEY are required")
	}
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, errors.New("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required")
	}

	return &cfg, nil
}
