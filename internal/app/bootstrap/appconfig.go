package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers framework-level settings (HTTP ports, TLS,
// logging, CORS); AppConfig is everything specific to PopcornPal. All
// secrets arrive through configuration, never source code.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session tokens
	JWTSecret string
	JWTExpiry time.Duration

	// Email delivery (SendGrid)
	SendGridAPIKey string
	MailFrom       string
	MailFromName   string

	// Base URL for password reset links
	BaseURL string

	// One-time code lifetimes
	EmailVerifyExpiry   time.Duration
	PasswordResetExpiry time.Duration

	// Media storage (Cloudinary)
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	// Generative AI (Gemini)
	GeminiAPIKey string
}
