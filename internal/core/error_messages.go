package core

// error_messages.go maps errors to caller-facing messages with support codes.
//
// Upload rejections (*Error) keep their exact rule text as the message; the
// code and action only add context for support staff. Everything else is
// matched by substring against errorPatterns, first match wins.
//
// # Codes
//
//	FILE001 - Request body exceeds UPLOAD_MAX_FILE_SIZE
//	FILE002 - Content type is not CSV
//	FILE003 - File could not be tokenized as CSV
//	FILE005 - Zero-byte upload
//	VAL001  - A field failed its rule
//	VAL004  - Header does not match the schema
//	VAL007  - Header present but no data rows
//	VAL008  - Row limit reached
//	SINK001 - Downstream sink rejected a record or was unreachable
//	NOTE001 - Notification could not be delivered (never returned to callers)
//	UPL002  - All upload slots busy
//	UPL004  - Request cancelled
//	UPL005  - Request timed out
//	ERR000  - Anything else

import (
	"errors"
	"strings"
)

// UserMessage provides user-facing error information.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

var kindMessages = map[Kind]UserMessage{
	KindUnsupportedFormat:    {Action: "Upload a .csv file", Code: "FILE002"},
	KindEmptyFile:            {Action: "Upload a file with a header and data rows", Code: "FILE005"},
	KindMalformedCSV:         {Action: "Check quoting and delimiters", Code: "FILE003"},
	KindHeaderMismatch:       {Action: "Download the template and copy its header exactly", Code: "VAL004"},
	KindEmptyData:            {Action: "Add at least one data row", Code: "VAL007"},
	KindRowCountExceeded:     {Action: "Split the file into smaller uploads", Code: "VAL008"},
	KindFieldValidation:      {Action: "Fix the named field and upload again", Code: "VAL001"},
	KindForwarding:           {Action: "Rows before the reported one were delivered; upload the rest again", Code: "SINK001"},
	KindNotificationDelivery: {Action: "No action needed", Code: "NOTE001"},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "too many uploads",
		msg: UserMessage{
			Message: "Too many uploads in progress",
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
			Action:  "Try uploading a smaller file or check your connection",
			Code:    "UPL005",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts err to a UserMessage. A nil error maps to the zero value.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var e *Error
	if errors.As(err, &e) {
		if msg, ok := kindMessages[e.Kind]; ok {
			msg.Message = e.Error()
			return msg
		}
	}

	lower := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(lower, p.pattern) {
			return p.msg
		}
	}
	return defaultMessage
}
