package order

import "errors"

var (
	ErrCartNotFound             = errors.New("no cart found for user")
	ErrCartEmpty                = errors.New("cart is empty")
	ErrOrderNotFound            = errors.New("order not found")
	ErrMenuNotFound             = errors.New("menu not found")
	ErrOrderAlreadyFinal        = errors.New("order is not in a cancellable state")
	ErrCancellationWindowClosed = errors.New("cancellation window has closed")
	ErrInsufficientBalance      = errors.New("wallet balance does not cover the order")
	ErrOrderNumberExhausted     = errors.New("could not generate a unique order number")
	ErrInvalidStatusChange      = errors.New("invalid order status change")
)
