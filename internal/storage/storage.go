package storage

import "errors"

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrTokenNotFound   = errors.New("token not found")
)
