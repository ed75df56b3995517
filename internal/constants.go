package internal

const (
	COOKIE_ACCESS_TOKEN_NAME = "chq_access_token"
	COOKIE_REDIRECT_NAME     = "chq_redirect_to"
)
