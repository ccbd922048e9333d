package domain

import "errors"

var (
	ErrAuditNotFound   = errors.New("audit not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrUnknownProvider = errors.New("unknown cloud provider")
)
