package apperrors

import "errors"

var (
	ErrActivityNotFound   = errors.New("activity not found")
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrTicketNotFound     = errors.New("ticket not found")

	// 下單請求驗證
	ErrNoInventory   = errors.New("activity has no ticket types")
	ErrDuplicateLine = errors.New("duplicate ticket type in request")
	ErrPriceMismatch = errors.New("declared total does not match ticket prices")

	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrIDCollision         = errors.New("generated id already exists")
	ErrInvalidState        = errors.New("operation not allowed in current state")
	ErrUnauthorized        = errors.New("actor not allowed to perform operation")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInternalServerError = errors.New("internal server error")
)
