package services

import "errors"

// ErrUnauthorized means the request carried no subject.
var ErrUnauthorized = errors.New("unauthorized")
