package domain

import "errors"

var (
	ErrConfiguration = errors.New("configuration error")
	ErrNetwork       = errors.New("network failure")
	ErrEmptyResponse = errors.New("empty model response")
	ErrParse         = errors.New("unparseable model output")
	ErrValidation    = errors.New("validation failed")
)
