package engine

import "errors"

var (
	ErrUnknownOpType = errors.New("unknown operation type")
	ErrUnknownSide   = errors.New("unknown side")
	ErrEmptyOrderID  = errors.New("empty order id")
	ErrEmptyPair     = errors.New("empty pair")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidPrice  = errors.New("invalid limit price")
)
