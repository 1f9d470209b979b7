package config

import "errors"

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set")
	ErrUnknownBackend     = errors.New("STORE_BACKEND must be postgres or memory")
)
