package errors

// ErrorCodeInfo contains metadata about an error code.
type ErrorCodeInfo struct {
	Code            ErrorCode
	Description     string
	SuggestedAction string
}

// ErrorCodeRegistry maps error codes to their metadata.
var ErrorCodeRegistry = map[ErrorCode]ErrorCodeInfo{
	CodeMalformedLine: {
		Code:            CodeMalformedLine,
		Description:     "Line does not match the fixed-column record layout",
		SuggestedAction: "Check column alignment and separating spaces on the reported line",
	},
	CodeMalformedContinuation: {
		Code:            CodeMalformedContinuation,
		Description:     "Continuation line carries meeting-only fields",
		SuggestedAction: "Blank the flags, joint, venue, page and audience columns, or give the line a number and date",
	},
	CodeInvalidFlags: {
		Code:            CodeInvalidFlags,
		Description:     "Flags column contains an unknown category code",
		SuggestedAction: "Use only codes from the flag alphabet: tmsledger check --help",
	},
	CodeInvalidJointCode: {
		Code:            CodeInvalidJointCode,
		Description:     "Joint column names an unknown society",
		SuggestedAction: "Use a known joint society abbreviation or add it to the registry",
	},
	CodeMalformedSpeaker: {
		Code:            CodeMalformedSpeaker,
		Description:     "Speaker is not of the form [Title] Initials. Surname [(role)]",
		SuggestedAction: "Rewrite the speaker as e.g. \"Dr. A.B. Smith\" or \"J. Doe (prop)\"",
	},
	CodeInternal: {
		Code:            CodeInternal,
		Description:     "Internal consistency check failed",
		SuggestedAction: "Report the offending input line together with the error",
	},
	CodeCancelled: {
		Code:            CodeCancelled,
		Description:     "Operation cancelled",
		SuggestedAction: "Re-run the command",
	},
	CodeNotFound: {
		Code:            CodeNotFound,
		Description:     "Input file or record not found",
		SuggestedAction: "Check the --input path or the input setting in the config file",
	},
	CodeProcessing: {
		Code:            CodeProcessing,
		Description:     "Unclassified processing error",
		SuggestedAction: "Re-run with --debug for more detail",
	},
}

// GetSuggestedAction returns the suggested action for the given error code.
func GetSuggestedAction(code ErrorCode) string {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.SuggestedAction
	}
	return "Re-run with --debug for more detail"
}

// GetDescription returns the human-readable description for the given error code.
func GetDescription(code ErrorCode) string {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.Description
	}
	return "Unknown error"
}
