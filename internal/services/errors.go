package services

// Service errors
var (
	ErrAttemptsExhausted = &ServiceError{Message: "you have already used both attempts today"}
	ErrAlreadyWon        = &ServiceError{Message: "you already won today"}
	ErrPlayInProgress    = &ServiceError{Message: "another play for this account is being recorded, try again"}
	ErrUnauthenticated   = &ServiceError{Message: "authentication required"}
)

// ServiceError represents a business-rule rejection. It is safe to show to
// the player and is never caused by a storage failure.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}
