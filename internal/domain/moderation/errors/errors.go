package errors

import (
	pkgerrors "github.com/zipwire/moderation-service/pkg/errors"
)

var (
	// ErrTenantNotResolved is returned when no valid 5-digit zip code tenant
	// could be resolved for the session; the session cannot proceed.
	ErrTenantNotResolved = pkgerrors.NewConfigurationError("no valid zip code tenant could be resolved")

	// ErrArticleNotFound is returned when an article is not found
	ErrArticleNotFound = pkgerrors.NewNotFoundError("article not found")

	// ErrSourceNotFound is returned when a source is not found
	ErrSourceNotFound = pkgerrors.NewNotFoundError("source not found")

	// ErrInvalidThreshold is returned when a relevance threshold is not a non-negative number
	ErrInvalidThreshold = pkgerrors.NewValidationError("relevance threshold must be a non-negative number")

	// ErrInvalidScore is returned when a score value is not a non-negative number
	ErrInvalidScore = pkgerrors.NewValidationError("score must be a non-negative number")

	// ErrInvalidInterval is returned when the regenerate interval is not positive
	ErrInvalidInterval = pkgerrors.NewValidationError("regenerate interval must be a positive number of minutes")

	// ErrEmptyKeyword is returned when a keyword mutation carries no keyword
	ErrEmptyKeyword = pkgerrors.NewValidationError("keyword must not be empty")

	// ErrUnknownCategory is returned for a keyword category the config does not have
	ErrUnknownCategory = pkgerrors.NewValidationError("unknown keyword category")

	// ErrUnknownFlag is returned for a moderation flag the store does not track
	ErrUnknownFlag = pkgerrors.NewValidationError("unknown moderation flag")

	// ErrServerOwnedClassification is returned when a client tries to apply the
	// auto-filter classification through the remote store; only restore is a
	// client operation.
	ErrServerOwnedClassification = pkgerrors.NewValidationError("auto-filter classification is applied server-side")

	// ErrDatabaseOperation is returned when a local cache operation fails
	ErrDatabaseOperation = pkgerrors.NewDatabaseError("database operation failed")
)
