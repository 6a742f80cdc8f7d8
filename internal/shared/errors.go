package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Catalog and provider errors
	ErrCatalogUnavailable = fmt.Errorf("catalog store unavailable")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrContentNotFound    = fmt.Errorf("content not found")
	ErrTrackNotFound      = fmt.Errorf("track not found")

	// Pack creation errors
	ErrInvalidPackInput   = fmt.Errorf("invalid pack input")
	ErrCounterUnavailable = fmt.Errorf("counter unavailable")
	ErrSlugCollision      = fmt.Errorf("share slug collision")
	ErrPartialCreation    = fmt.Errorf("pack creation failed after pack row was written")
	ErrPackNotFound       = fmt.Errorf("pack not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
