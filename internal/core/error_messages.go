package core

// error_messages.go defines user-friendly error messages with codes for
// support reference. When a dashboard page or export fails, the code is
// shown next to the message so it can be quoted when reporting the problem.
//
// # Data Errors (DATA001-DATA099)
//
//	DATA001 - No data: No CSV source could be loaded
//	          Action: Upload a CSV or place cleaned_tableau_input.csv next to the server
//	          Patterns: "no data source"
//
//	DATA002 - Dataset expired: The dataset is no longer loaded
//	          Action: Upload the file again
//	          Patterns: "dataset not found"
//
// # Role Errors (ROLE001-ROLE099)
//
//	ROLE001 - Unresolved role: No column serves the requested role
//	          Action: Assign a column to the role on the Data & Export page
//	          Patterns: "unresolved role"
//
//	ROLE002 - Column not found: An override names a column the file lacks
//	          Action: Pick one of the columns listed in the mapping
//	          Patterns: "column not found"
//
//	ROLE003 - Unknown role: The role name is not recognised
//	          Action: Use one of country, sales, profit, category, product
//	          Patterns: "unknown role"
//
// # Chart Errors (CHART001-CHART099)
//
//	CHART001 - Empty chart: There is nothing to plot for this selection
//	           Action: Widen the filters
//	           Patterns: "chart has no data"
//
//	CHART002 - Render failed: The chart could not be drawn
//	           Action: Try the interactive chart instead
//	           Patterns: "render chart"
//
//	CHART003 - Nothing positive: The treemap only shows groups with positive sales
//	           Action: Use the bar chart to see negative totals
//	           Patterns: "no positive values"
//
// # Preset Errors (PRE001-PRE099)
//
//	PRE001 - Preset not found
//	         Patterns: "preset not found", "invalid preset id"
//
//	PRE002 - Preset exists: A preset with this name already exists
//	         Patterns: "preset already exists"
//
//	PRE003 - Preset incomplete: Name or headers missing
//	         Patterns: "preset name is required", "preset headers are required"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large   Patterns: "file too large", "request body too large"
//	FILE002 - Invalid CSV      Patterns: "invalid csv"
//	FILE004 - No file          Patterns: "no file provided"
//	FILE005 - Empty file       Patterns: "empty file"
//
// # Upload and Request Errors (UPL001-UPL099, REQ001-REQ099)
//
//	UPL002 - System busy       Patterns: "too many uploads"
//	UPL004 - Request cancelled Patterns: "context canceled"
//	UPL005 - Request timeout   Patterns: "context deadline exceeded"
//	REQ001 - Bad request       Patterns: "invalid request"
//
// # Database Errors (DB004-DB099)
//
//	DB004 - Connection refused Patterns: "connection refused"
//	DB005 - Connection reset   Patterns: "connection reset"
//	DB006 - Timeout            Patterns: "timeout"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Rate limited     Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check the server log for the
// original error, which is always logged with the request ID.
//
// # Pattern Matching
//
// Patterns are matched case-insensitively using strings.Contains. The first
// matching pattern wins, so more specific patterns come first.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgPresetNotFound = UserMessage{
		Message: "Preset not found",
		Action:  "Refresh the preset list",
		Code:    "PRE001",
	}
	msgPresetIncomplete = UserMessage{
		Message: "A preset needs a name and the file headers it applies to",
		Action:  "Fill in the preset name and try again",
		Code:    "PRE003",
	}
	msgFileTooLarge = UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Remove unused columns or rows and upload again",
		Code:    "FILE001",
	}
)

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages. Order matters: the first match wins.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Data (DATA001-DATA002)
	// =========================================================================
	{
		pattern: "no data source",
		msg: UserMessage{
			Message: "No CSV found",
			Action:  "Upload a CSV or place cleaned_tableau_input.csv next to the server",
			Code:    "DATA001",
		},
	},
	{
		pattern: "dataset not found",
		msg: UserMessage{
			Message: "This dataset is no longer loaded",
			Action:  "Upload the file again",
			Code:    "DATA002",
		},
	},

	// =========================================================================
	// Roles (ROLE001-ROLE003)
	// =========================================================================
	{
		pattern: "unresolved role",
		msg: UserMessage{
			Message: "No column was found for this field",
			Action:  "Assign a column to the role on the Data & Export page",
			Code:    "ROLE001",
		},
	},
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "The chosen column is not in this file",
			Action:  "Pick one of the columns listed in the mapping",
			Code:    "ROLE002",
		},
	},
	{
		pattern: "unknown role",
		msg: UserMessage{
			Message: "Unknown field name",
			Action:  "Use one of country, sales, profit, category, product",
			Code:    "ROLE003",
		},
	},

	// =========================================================================
	// Charts (CHART001-CHART003)
	// =========================================================================
	{
		// Wraps "chart has no data", so it must come first.
		pattern: "no positive values",
		msg: UserMessage{
			Message: "The treemap only shows groups with positive sales",
			Action:  "Use the bar chart to see negative totals",
			Code:    "CHART003",
		},
	},
	{
		pattern: "chart has no data",
		msg: UserMessage{
			Message: "There is nothing to plot for this selection",
			Action:  "Widen the filters",
			Code:    "CHART001",
		},
	},
	{
		pattern: "render chart",
		msg: UserMessage{
			Message: "The chart could not be drawn",
			Action:  "Try the interactive chart instead",
			Code:    "CHART002",
		},
	},

	// =========================================================================
	// Presets (PRE001-PRE003)
	// =========================================================================
	{pattern: "preset not found", msg: msgPresetNotFound},
	{pattern: "invalid preset id", msg: msgPresetNotFound},
	{
		pattern: "preset already exists",
		msg: UserMessage{
			Message: "A preset with this name already exists",
			Action:  "Choose a different name or delete the old preset",
			Code:    "PRE002",
		},
	},
	{pattern: "preset name is required", msg: msgPresetIncomplete},
	{pattern: "preset headers are required", msg: msgPresetIncomplete},

	// =========================================================================
	// Files (FILE001-FILE005)
	// =========================================================================
	{pattern: "file too large", msg: msgFileTooLarge},
	{pattern: "request body too large", msg: msgFileTooLarge},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is comma-separated with a header row",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a CSV file with a header row",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Uploads and requests (UPL002-UPL005, REQ001)
	// =========================================================================
	{
		pattern: "too many uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Check the parameters and try again",
			Code:    "REQ001",
		},
	},

	// =========================================================================
	// Database (DB004-DB006)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
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
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
//
//	msg := MapError(fmt.Errorf("summary: %w", ErrUnresolvedRole))
//	// msg.Code == "ROLE001"
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

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
