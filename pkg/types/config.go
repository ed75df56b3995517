package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Tenant partition key scoping every subcontractor and document row.
	// Supplied out-of-band alongside the service credentials.
	TenantID string `envconfig:"TENANT_ID"`

	// Cognito Auth
	CognitoUserPoolID string `envconfig:"COGNITO_USER_POOL_ID"`
	CognitoClientID   string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoIssuerURL  string `envconfig:"COGNITO_ISSUER_URL"`

	// Certificate storage
	S3BucketName string `envconfig:"S3_BUCKET_NAME" default:"certificates"`
	S3Region     string `envconfig:"S3_REGION" default:"us-east-1"`

	// Vision extraction. An empty key disables the feature; unreadable
	// certificates then stay in manual follow-up.
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// Default warning window in days for the traffic-light view.
	WarningWindowDays int `envconfig:"WARNING_WINDOW_DAYS" default:"30"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes
}
