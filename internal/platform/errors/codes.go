// Package errors provides structured error handling with i18n support.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Generic lookups
	CodeNotFound       Code = "NOT_FOUND"
	CodeStorageFailure Code = "STORAGE_FAILURE"

	// Identity errors
	CodeUserNotFound        Code = "USER_NOT_FOUND"
	CodeDuplicateEmail      Code = "DUPLICATE_EMAIL"
	CodeInvalidCredentials  Code = "INVALID_CREDENTIALS"
	CodeUserInvalidEmail    Code = "USER_INVALID_EMAIL"
	CodeUserInvalidPassword Code = "USER_INVALID_PASSWORD"
	CodeUserInvalidRole     Code = "USER_INVALID_ROLE"

	// Session errors
	CodeSessionNotFound Code = "SESSION_NOT_FOUND"
	CodeSessionExpired  Code = "SESSION_EXPIRED"
	CodeInvalidTTL      Code = "INVALID_TTL"
	CodeTokenInvalid    Code = "TOKEN_INVALID"

	// Catalog errors
	CodeEmojiNotFound  Code = "EMOJI_NOT_FOUND"
	CodeDuplicateEmoji Code = "DUPLICATE_EMOJI"
	CodeEmojiInvalid   Code = "EMOJI_INVALID"

	// Ledger errors
	CodeEmptyContent            Code = "EMPTY_CONTENT"
	CodeFeedbackAlreadyReviewed Code = "FEEDBACK_ALREADY_REVIEWED"
	CodeInvalidPageToken        Code = "INVALID_PAGE_TOKEN"

	// Access errors
	CodeUnauthorized Code = "UNAUTHORIZED"
)
