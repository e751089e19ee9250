package services

import "errors"

// Domain errors mapped to status codes and flash messages by the handlers.
var (
	ErrBookNotFound     = errors.New("book not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrNoCustomer       = errors.New("customer profile not found")
	ErrNotOwner         = errors.New("unauthorized access")
	ErrEmptyCart        = errors.New("your cart is empty")
	ErrUnknownReference = errors.New("unknown reference")
	ErrInvalidStatus    = errors.New("invalid status transition")
	ErrInvalidLogin     = errors.New("invalid credentials")
	ErrUsernameTaken    = errors.New("username already taken")
)
