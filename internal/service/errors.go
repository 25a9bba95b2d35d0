package service

import "errors"

var (
	ErrAlreadyExists      = errors.New("error already exists")
	ErrInvalidCredentials = errors.New("error invalid credentials")
	ErrNotFound           = errors.New("error not found")
	ErrInsufficientData   = errors.New("error not enough data points")
	ErrInvalidArgument    = errors.New("error invalid argument")
)
