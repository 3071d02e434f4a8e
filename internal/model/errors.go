// Package model provides the strict record types of the dashboard and the
// boundary that normalizes raw backend payloads into them.
package model

import "errors"

// Error types for podboard operations
var (
	ErrCollectionNotFound = errors.New("collection not found")
	ErrCollectionExists   = errors.New("collection already exists")
	ErrInvalidKind        = errors.New("invalid collection kind")
	ErrInvalidName        = errors.New("invalid name")
	ErrInvalidPayload     = errors.New("invalid payload")
	ErrInvalidID          = errors.New("invalid ID")
	ErrInvalidPrefix      = errors.New("invalid prefix")
	ErrRoleNotFound       = errors.New("role not found")
	ErrRoleExists         = errors.New("role already exists")
	ErrUnknownPermission  = errors.New("unknown permission")
	ErrInvalidCatalog     = errors.New("invalid permission catalog")
	ErrEmptyValue         = errors.New("empty value not allowed")
)
