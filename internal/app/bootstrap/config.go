package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for PopcornPal. They are
// loaded via WAFFLE's config system from config files, POPCORNPAL_*
// environment variables, or command-line flags.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "popcornpal", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "jwt_secret", Default: "", Desc: "HS256 signing secret for session tokens (required)"},
	{Name: "jwt_expiry", Default: "24h", Desc: "Session token lifetime (e.g., 24h, 12h)"},

	{Name: "sendgrid_api_key", Default: "", Desc: "SendGrid API key for transactional email"},
	{Name: "mail_from", Default: "noreply@popcornpal.app", Desc: "From email address"},
	{Name: "mail_from_name", Default: "PopcornPal", Desc: "From display name"},

	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for password reset links"},

	{Name: "email_verify_expiry", Default: "10m", Desc: "Email verification OTP expiry (e.g., 10m, 1h)"},
	{Name: "password_reset_expiry", Default: "1h", Desc: "Password reset token expiry"},

	{Name: "cloudinary_cloud_name", Default: "", Desc: "Cloudinary cloud name"},
	{Name: "cloudinary_api_key", Default: "", Desc: "Cloudinary API key"},
	{Name: "cloudinary_api_secret", Default: "", Desc: "Cloudinary API secret"},

	{Name: "gemini_api_key", Default: "", Desc: "Gemini API key for sentiment tagging and chat"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "POPCORNPAL", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTExpiry: appValues.Duration("jwt_expiry", 24*time.Hour),

		SendGridAPIKey: appValues.String("sendgrid_api_key"),
		MailFrom:       appValues.String("mail_from"),
		MailFromName:   appValues.String("mail_from_name"),

		BaseURL: appValues.String("base_url"),

		EmailVerifyExpiry:   appValues.Duration("email_verify_expiry", 10*time.Minute),
		PasswordResetExpiry: appValues.Duration("password_reset_expiry", time.Hour),

		CloudinaryCloudName: appValues.String("cloudinary_cloud_name"),
		CloudinaryAPIKey:    appValues.String("cloudinary_api_key"),
		CloudinaryAPISecret: appValues.String("cloudinary_api_secret"),

		GeminiAPIKey: appValues.String("gemini_api_key"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation before any
// backends are touched.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret must be set")
	}
	if appCfg.SendGridAPIKey == "" {
		return fmt.Errorf("sendgrid_api_key must be set")
	}
	if appCfg.CloudinaryCloudName == "" || appCfg.CloudinaryAPIKey == "" || appCfg.CloudinaryAPISecret == "" {
		return fmt.Errorf("cloudinary_cloud_name, cloudinary_api_key and cloudinary_api_secret must be set")
	}
	if appCfg.GeminiAPIKey == "" {
		logger.Warn("gemini_api_key not set; sentiment tagging falls back to Neutral and chat is degraded")
	}
	return nil
}
