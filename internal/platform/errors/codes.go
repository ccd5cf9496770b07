// Package errors provides structured errors shared by the arena packages.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeInvalidArgument rejects malformed caller input.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// Kit errors
	CodeKitInvalidEntry Code = "KIT_INVALID_ENTRY"
	CodeKitUnavailable  Code = "KIT_UNAVAILABLE"

	// Store errors
	CodeStoreFailed Code = "STORE_FAILED"
	CodeStoreClosed Code = "STORE_CLOSED"
	CodeStoreBusy   Code = "STORE_BUSY"
	CodeNotFound    Code = "NOT_FOUND"

	// Stats errors
	CodePlayerNotRegistered Code = "PLAYER_NOT_REGISTERED"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeInvalidArgument, CodeKitInvalidEntry:
		return codes.InvalidArgument
	case CodeNotFound:
		return codes.NotFound
	case CodeStoreClosed, CodeStoreBusy, CodeKitUnavailable:
		return codes.Unavailable
	case CodePlayerNotRegistered:
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}
