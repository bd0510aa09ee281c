// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

// Domain error taxonomy. Services wrap these with detail via the constructors
// below; callers test with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient_funds")
	ErrQuotaExceeded     = errors.New("quota_exceeded")
	ErrTransient         = errors.New("storage unavailable")
	ErrFatal             = errors.New("invariant violated")
)

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Fatal(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFatal, fmt.Sprintf(format, args...))
}

// Transient marks a storage failure. Domain errors and context errors pass
// through unchanged so the taxonomy is never hidden behind a generic retry.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomain(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrTransient, op, err)
}

// IsDomain reports whether err already carries one of the taxonomy sentinels.
func IsDomain(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrForbidden, ErrNotFound, ErrInsufficientFunds,
		ErrQuotaExceeded, ErrTransient, ErrFatal,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Map converts domain/repo/infra errors into gRPC-friendly status errors.
// Quota and funds conditions keep a stable message so clients can route to top-up.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())

	case errors.Is(err, ErrQuotaExceeded):
		return status.Error(codes.ResourceExhausted, ErrQuotaExceeded.Error())

	case errors.Is(err, ErrInsufficientFunds):
		return status.Error(codes.FailedPrecondition, ErrInsufficientFunds.Error())

	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return status.Error(codes.NotFound, "record not found")

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")

	case errors.Is(err, ErrTransient):
		return status.Error(codes.Unavailable, err.Error())

	case errors.Is(err, ErrFatal):
		return status.Error(codes.Internal, err.Error())

	default:
		// fallback → bubble up error message for debugging
		return status.Error(codes.Internal, err.Error())
	}
}

// InvalidArgument creates a gRPC InvalidArgument error.
// Use this in transport handlers for malformed request fields.
func InvalidArgument(msg string) error {
	return status.Error(codes.InvalidArgument, msg)
}
