package errors

import "fmt"

var (
	// Submission errors, rejected before anything is persisted.
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrGroupNotFound   = fmt.Errorf("group not found")

	// ErrValidationFailed signals a store-level invariant violation.
	// The engine validates first, so hitting this is an internal fault.
	ErrValidationFailed = fmt.Errorf("message validation failed")

	// ErrSlowConsumer is returned by a session sink whose buffer is full.
	// The push is lost for that session only; history covers the gap.
	ErrSlowConsumer = fmt.Errorf("slow consumer, delivery dropped")

	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")

	ErrWorkerPanic = fmt.Errorf("worker panic")
)
