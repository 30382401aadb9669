package core

// error_messages.go maps technical errors to user-facing messages with codes
// that users can quote to support.
//
// # Mapping Errors (MAP001-MAP099)
//
//	MAP001 - Invalid mapping: the column mapping is incomplete
//	         Patterns: "invalid mapping"
//	MAP002 - Unknown column: a mapped column is not in the dataset
//	         Patterns: "column not found"
//	MAP003 - Unknown strategy: duplicate handling is not OVERWRITE, SUM or FLAG
//	         Patterns: "unknown duplicate strategy"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - System busy: every run slot is taken
//	         Patterns: "too many concurrent runs"
//	RUN002 - Run not found: the run expired or never existed
//	         Patterns: "run not found"
//	RUN003 - Key not found: the run has no result for this key
//	         Patterns: "result key not found"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request too large: body or row count exceeds the limit
//	         Patterns: "request body too large", "request too large"
//	REQ002 - Invalid body: the request body is not valid JSON for the endpoint
//	         Patterns: "invalid request body"
//	REQ003 - Invalid preview: the resolve preview request is incomplete
//	         Patterns: "invalid resolve request"
//	REQ004 - Request cancelled
//	         Patterns: "context canceled"
//	REQ005 - Request timeout
//	         Patterns: "context deadline exceeded"
//	REQ006 - Invalid filter: the results filter is not a known bucket
//	         Patterns: "invalid filter"
//
// # Rate Limiting and Access (RATE001, AUTH001)
//
//	RATE001 - Too many requests
//	          Patterns: "rate limit"
//	AUTH001 - Missing or invalid API key
//	          Patterns: "unauthorized"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the server logs for the original error.
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import "strings"

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Mapping errors. "column not found" is reported inside an
	// "invalid mapping" error, so it must be checked first.
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "A mapped column does not exist in the dataset",
			Action:  "Check that the key and value columns match the dataset headers exactly",
			Code:    "MAP002",
		},
	},
	{
		pattern: "unknown duplicate strategy",
		msg: UserMessage{
			Message: "Unknown duplicate handling strategy",
			Action:  "Use OVERWRITE, SUM or FLAG",
			Code:    "MAP003",
		},
	},
	{
		pattern: "invalid mapping",
		msg: UserMessage{
			Message: "The column mapping is incomplete",
			Action:  "Choose a key column on both sides and at least one value column pair",
			Code:    "MAP001",
		},
	},

	// Run errors
	{
		pattern: "too many concurrent runs",
		msg: UserMessage{
			Message: "System is busy with other reconciliations",
			Action:  "Please wait a moment and try again",
			Code:    "RUN001",
		},
	},
	{
		pattern: "run not found",
		msg: UserMessage{
			Message: "Reconciliation run not found",
			Action:  "The run may have expired. Please reconcile the datasets again",
			Code:    "RUN002",
		},
	},
	{
		pattern: "result key not found",
		msg: UserMessage{
			Message: "No result exists for this key",
			Action:  "Check the key against the run's results",
			Code:    "RUN003",
		},
	},

	// Request errors
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "Request exceeds the maximum size",
			Action:  "Split the datasets into smaller batches",
			Code:    "REQ001",
		},
	},
	{
		pattern: "request too large",
		msg: UserMessage{
			Message: "Request exceeds the maximum size",
			Action:  "Split the datasets into smaller batches",
			Code:    "REQ001",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request body could not be read",
			Action:  "Send a JSON object matching the endpoint's documented shape",
			Code:    "REQ002",
		},
	},
	{
		pattern: "invalid resolve request",
		msg: UserMessage{
			Message: "The duplicate preview request is incomplete",
			Action:  "Provide a key field and at least one row",
			Code:    "REQ003",
		},
	},
	{
		pattern: "invalid filter",
		msg: UserMessage{
			Message: "Unknown results filter",
			Action:  "Use ALL, MATCH, MISMATCH, MISSING, DUPLICATE or VERIFIED",
			Code:    "REQ006",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try smaller datasets or try again later",
			Code:    "REQ005",
		},
	},

	// Rate limiting and access
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
	{
		pattern: "unauthorized",
		msg: UserMessage{
			Message: "Missing or invalid API key",
			Action:  "Send a valid key in the X-API-Key header",
			Code:    "AUTH001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// The first matching pattern wins; unmatched errors map to ERR000.
//
// Example:
//
//	msg := MapError(fmt.Errorf("get run: %w", ErrRunNotFound))
//	// msg.Code == "RUN002"
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

// IsUserFacing reports whether err maps to a specific code rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
// Error returns the user message; Unwrap returns the technical error.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err with MapError. It returns nil for a nil err.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
