package internal

const (
	COOKIE_REDIRECT_NAME = "visionaid_redirect_to"
)
