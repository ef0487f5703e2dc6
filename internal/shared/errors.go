package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrAuthRejected       = fmt.Errorf("authentication rejected")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrDecodeFailed       = fmt.Errorf("credential decode failed")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Transfer and API errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTransferInFlight   = fmt.Errorf("transfer already in flight")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
