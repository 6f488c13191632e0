package sync

import "errors"

var (
	ErrInvalidPayload    = errors.New("invalid sync payload")
	ErrStorageLimit      = errors.New("storage limit exceeded")
	ErrConflictNotFound  = errors.New("conflict not found")
	ErrConflictResolved  = errors.New("conflict already resolved")
	ErrInvalidResolution = errors.New("invalid conflict resolution")
	ErrDeviceNotFound    = errors.New("device not found")
)
