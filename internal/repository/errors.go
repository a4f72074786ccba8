package repository

import "errors"

// Common repository errors that can be tested for
var (
	ErrProviderNotFound = errors.New("oauth provider not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrAPIKeyNotFound   = errors.New("api key not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrDuplicateLogin   = errors.New("login already exists")
)
