package source

import "errors"

var (
	// ErrNotFound is returned when the source has no matching user.
	ErrNotFound = errors.New("user not found in source")

	// ErrNotImplemented is returned by contract operations a source does not
	// support. It is an integration bug, never a reason to fall back.
	ErrNotImplemented = errors.New("source operation not implemented")

	// ErrUnknownKind is returned for a source kind that was never registered.
	ErrUnknownKind = errors.New("unknown source kind")

	// ErrKindRegistered is returned when a kind is registered twice.
	ErrKindRegistered = errors.New("source kind already registered")

	// ErrUnboundSource is returned when an attribute, municipality or binding
	// name does not lead to a configured source.
	ErrUnboundSource = errors.New("no source bound")

	// ErrInvalidConfig wraps validation failures of a source configuration.
	ErrInvalidConfig = errors.New("invalid source configuration")

	// ErrNoProvisioner is returned when a source is opened without a provisioner.
	ErrNoProvisioner = errors.New("source has no provisioner")
)
