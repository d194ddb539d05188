package service

import "errors"

var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrSessionNotFound      = errors.New("payment session not found")
	ErrIllegalTransition    = errors.New("illegal status transition")
	ErrOperationInProgress  = errors.New("operation already in progress")
	ErrConcurrentUpdate     = errors.New("session was modified concurrently")
	ErrRefundExceedsBalance = errors.New("refund amount exceeds refundable balance")
	ErrProviderUnsupported  = errors.New("provider is not supported")
)
