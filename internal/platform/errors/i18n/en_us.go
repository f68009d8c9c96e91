package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeNotFound                = "NOT_FOUND"
	CodeStorageFailure          = "STORAGE_FAILURE"
	CodeUserNotFound            = "USER_NOT_FOUND"
	CodeDuplicateEmail          = "DUPLICATE_EMAIL"
	CodeInvalidCredentials      = "INVALID_CREDENTIALS"
	CodeUserInvalidEmail        = "USER_INVALID_EMAIL"
	CodeUserInvalidPassword     = "USER_INVALID_PASSWORD"
	CodeUserInvalidRole         = "USER_INVALID_ROLE"
	CodeSessionNotFound         = "SESSION_NOT_FOUND"
	CodeSessionExpired          = "SESSION_EXPIRED"
	CodeInvalidTTL              = "INVALID_TTL"
	CodeTokenInvalid            = "TOKEN_INVALID"
	CodeEmojiNotFound           = "EMOJI_NOT_FOUND"
	CodeDuplicateEmoji          = "DUPLICATE_EMOJI"
	CodeEmojiInvalid            = "EMOJI_INVALID"
	CodeEmptyContent            = "EMPTY_CONTENT"
	CodeFeedbackAlreadyReviewed = "FEEDBACK_ALREADY_REVIEWED"
	CodeInvalidPageToken        = "INVALID_PAGE_TOKEN"
	CodeUnauthorized            = "UNAUTHORIZED"
)

var enUS = map[Code]string{
	CodeNotFound:                "The requested record was not found.",
	CodeStorageFailure:          "The service is temporarily unavailable. Please try again.",
	CodeUserNotFound:            "User not found.",
	CodeDuplicateEmail:          "An account with this email already exists.",
	CodeInvalidCredentials:      "Invalid email or password.",
	CodeUserInvalidEmail:        "Enter a valid email address.",
	CodeUserInvalidPassword:     "Password must be between {{.Min}} and {{.Max}} characters.",
	CodeUserInvalidRole:         "Unknown role.",
	CodeSessionNotFound:         "Please sign in to continue.",
	CodeSessionExpired:          "Your session has expired. Please sign in again.",
	CodeInvalidTTL:              "Session lifetime must be positive.",
	CodeTokenInvalid:            "Please sign in to continue.",
	CodeEmojiNotFound:           "That emoji is not supported.",
	CodeDuplicateEmoji:          "Emoji {{.Character}} is already in the catalog.",
	CodeEmojiInvalid:            "An emoji needs a character and a meaning.",
	CodeEmptyContent:            "Feedback cannot be empty.",
	CodeFeedbackAlreadyReviewed: "Reviewed feedback cannot be deleted.",
	CodeInvalidPageToken:        "The page token is not valid.",
	CodeUnauthorized:            "You do not have permission to do that.",
}
