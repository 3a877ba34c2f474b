package domain

import "errors"

var (
	ErrClassifierInit        = errors.New("classifier initialization failed")
	ErrClassification        = errors.New("classification failed")
	ErrInvalidClassification = errors.New("classifier returned an invalid confidence")
)
