package authn

import "errors"

var (
	ErrSecretRequired          = errors.New("jwt secret is required")
	ErrIssueKeyRequired        = errors.New("issue key is required")
	ErrTokenExpired            = errors.New("token has expired")
	ErrTokenInvalid            = errors.New("token is invalid")
	ErrUnexpectedSigningMethod = errors.New("unexpected signing method")
	ErrSubjectRequired         = errors.New("subject is required")
)
