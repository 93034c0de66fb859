package utils

import "errors"

var (
	ErrorRecordNotFound = errors.New("record not found")
	ErrorInvalidUserId  = errors.New("invalid user id")
)
