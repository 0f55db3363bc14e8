// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Too many rows: The submission exceeds the per-request row limit
//	         Action: Split the file into smaller files
//	         Patterns: "too many rows"
//
//	VAL002 - Invalid duplicate action: Duplicate policy must be skip or update
//	         Action: Choose skip or update
//	         Patterns: "invalid duplicate action"
//
//	VAL003 - Invalid number: Invalid number format detected
//	         Action: Remove currency symbols and use standard decimal format
//	         Patterns: "invalid number"
//
//	VAL004 - Invalid request: The request body could not be read
//	         Action: Send a JSON body with a rows array
//	         Patterns: "invalid request body"
//
//	VAL005 - No rows: The request contained no rows
//	         Action: Include at least one row with a name
//	         Patterns: "no rows provided"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - No valid rows: The file has no rows with a product name
//	          Action: Add a header line and at least one row with a name
//	          Patterns: "no valid rows"
//
//	FILE002 - File too large: File exceeds maximum size limit
//	          Action: Split the file into smaller files
//	          Patterns: "request body too large", "file too large"
//
//	FILE003 - Unsupported file: Only .csv files are accepted
//	          Action: Export the spreadsheet as CSV
//	          Patterns: "only .csv files"
//
//	FILE004 - File not found: The file could not be opened
//	          Action: Check the file path
//	          Patterns: "no such file"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - System busy: Too many imports in progress
//	         Action: Please wait a moment and try again
//	         Patterns: "too many concurrent imports"
//
//	IMP002 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	IMP003 - Request timeout: Request timed out
//	         Action: Try importing a smaller file or check your connection
//	         Patterns: "context deadline exceeded"
//
//	IMP004 - Import in progress: Another action is already running
//	         Action: Wait for the current import to finish
//	         Patterns: "invalid step transition"
//
// # Authentication Errors (AUTH001-AUTH099)
//
//	AUTH001 - Missing credentials: No bearer token was sent
//	          Action: Set ZANDER_API_TOKEN or pass --token
//	          Patterns: "missing bearer token"
//
//	AUTH002 - Expired credentials: The bearer token has expired
//	          Action: Request a new token
//	          Patterns: "token is expired"
//
//	AUTH003 - Invalid credentials: The bearer token was rejected
//	          Action: Check that the token belongs to this environment
//	          Patterns: "invalid token", "token signature is invalid", "token is malformed"
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate SKU: A product with this SKU already exists
//	        Action: Re-run validation and choose a duplicate policy
//	        Patterns: "duplicate key", "unique constraint", "violates unique"
//
//	DB002 - Value too long: A value exceeds the column size
//	        Action: Shorten the value and try again
//	        Patterns: "value too long"
//
//	DB003 - Connection refused: Unable to connect to database
//	        Action: Please try again in a few moments
//	        Patterns: "connection refused"
//
//	DB004 - Connection reset: Database connection was interrupted
//	        Action: Please try again
//	        Patterns: "connection reset"
//
//	DB005 - Timeout: Operation timed out
//	        Action: Try importing a smaller file or try again later
//	        Patterns: "timeout"
//
//	DB006 - Deadlock: Database was busy with conflicting operations
//	        Action: Please try again
//	        Patterns: "deadlock"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns are defined
// before general ones.

package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Validation Errors (VAL001-VAL005)
	// =========================================================================
	{
		pattern: "too many rows",
		msg: UserMessage{
			Message: "The file has more rows than a single import allows",
			Action:  "Split the file into smaller files",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid duplicate action",
		msg: UserMessage{
			Message: "Duplicate policy must be skip or update",
			Action:  "Choose skip or update",
			Code:    "VAL002",
		},
	},
	{
		pattern: "invalid number",
		msg: UserMessage{
			Message: "Invalid number format detected",
			Action:  "Remove currency symbols and use standard decimal format",
			Code:    "VAL003",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request body could not be read",
			Action:  "Send a JSON body with a rows array",
			Code:    "VAL004",
		},
	},
	{
		pattern: "no rows provided",
		msg: UserMessage{
			Message: "The request contained no rows",
			Action:  "Include at least one row with a name",
			Code:    "VAL005",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE004)
	// =========================================================================
	{
		pattern: "no valid rows",
		msg: UserMessage{
			Message: "No valid rows found in file",
			Action:  "Add a header line and at least one row with a name",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller files",
			Code:    "FILE002",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller files",
			Code:    "FILE002",
		},
	},
	{
		pattern: "only .csv files",
		msg: UserMessage{
			Message: "Only .csv files are accepted",
			Action:  "Export the spreadsheet as CSV",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "The file could not be opened",
			Action:  "Check the file path",
			Code:    "FILE004",
		},
	},

	// =========================================================================
	// Import Errors (IMP001-IMP004)
	// =========================================================================
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "System is busy processing other imports",
			Action:  "Please wait a moment and try again",
			Code:    "IMP001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "IMP002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try importing a smaller file or check your connection",
			Code:    "IMP003",
		},
	},
	{
		pattern: "invalid step transition",
		msg: UserMessage{
			Message: "Another action is already running",
			Action:  "Wait for the current import to finish",
			Code:    "IMP004",
		},
	},

	// =========================================================================
	// Authentication Errors (AUTH001-AUTH003)
	// =========================================================================
	{
		pattern: "missing bearer token",
		msg: UserMessage{
			Message: "No credentials were provided",
			Action:  "Set ZANDER_API_TOKEN or pass --token",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "token is expired",
		msg: UserMessage{
			Message: "Your session has expired",
			Action:  "Request a new token",
			Code:    "AUTH002",
		},
	},
	{
		pattern: "invalid token",
		msg: UserMessage{
			Message: "Your credentials were rejected",
			Action:  "Check that the token belongs to this environment",
			Code:    "AUTH003",
		},
	},
	{
		pattern: "token signature is invalid",
		msg: UserMessage{
			Message: "Your credentials were rejected",
			Action:  "Check that the token belongs to this environment",
			Code:    "AUTH003",
		},
	},
	{
		pattern: "token is malformed",
		msg: UserMessage{
			Message: "Your credentials were rejected",
			Action:  "Check that the token belongs to this environment",
			Code:    "AUTH003",
		},
	},

	// =========================================================================
	// Database Errors (DB001-DB006)
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A product with this SKU already exists",
			Action:  "Re-run validation and choose a duplicate policy",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "A product with this SKU already exists",
			Action:  "Re-run validation and choose a duplicate policy",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "A product with this SKU already exists",
			Action:  "Re-run validation and choose a duplicate policy",
			Code:    "DB001",
		},
	},
	{
		pattern: "value too long",
		msg: UserMessage{
			Message: "A value is longer than the field allows",
			Action:  "Shorten the value and try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the server",
			Action:  "Please try again in a few moments",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Connection was interrupted",
			Action:  "Please try again",
			Code:    "DB004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try importing a smaller file or try again later",
			Code:    "DB005",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB006",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// Support staff should check application logs for the original technical
// error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	msg := MapError(ErrTooManyImports)
//	// msg.Code == "IMP001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
