// Package apperr holds the sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
)

// Pipeline and conversation failures.
var (
	// ErrExtraction means a page could not be read; fatal to the capture flow.
	ErrExtraction = errors.New("extraction failed")
	// ErrSummary is recovered with a fallback overview and never surfaced.
	ErrSummary = errors.New("summary failed")
	// ErrDiscovery is recovered with a fallback tangent and never surfaced.
	ErrDiscovery = errors.New("discovery failed")
	// ErrAnalysis is recovered with neutral insights and never surfaced.
	ErrAnalysis = errors.New("analysis failed")
	// ErrResponse means a chat turn produced no reply; the user may retry.
	ErrResponse = errors.New("response failed")

	ErrInvalidState = errors.New("invalid conversation state")
	ErrBusy         = errors.New("request already in flight")
)
