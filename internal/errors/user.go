package errors

import "errors"

// ErrorInfo holds a user-facing message and suggested action for an error.
type ErrorInfo struct {
	Message string
	Action  string
}

type errorEntry struct {
	err  error
	info ErrorInfo
}

// A slice rather than a map because wrapped errors need errors.Is traversal.
//
//nolint:gochecknoglobals // Pre-built mapping
var errorInfoEntries = []errorEntry{
	{
		err: ErrUnknownTask,
		info: ErrorInfo{
			Message: "The requested task is not registered.",
			Action:  "Run 'clarifyflow tasks' to see available tasks.",
		},
	},
	{
		err: ErrInvalidTask,
		info: ErrorInfo{
			Message: "The task definition is invalid.",
			Action:  "Give the task a non-empty description.",
		},
	},
	{
		err: ErrKnowledgeBase,
		info: ErrorInfo{
			Message: "The knowledge base file could not be used.",
			Action:  "Inspect the file set by --kb, or reset it with 'clarifyflow kb clear' (without --task).",
		},
	},
	{
		err: ErrLockTimeout,
		info: ErrorInfo{
			Message: "Could not acquire the knowledge base lock.",
			Action:  "Wait for the other clarifyflow process to finish and retry.",
		},
	},
	{
		err: ErrLLMUnavailable,
		info: ErrorInfo{
			Message: "An LLM strategy is enabled but no API key was found.",
			Action:  "Set OPENAI_API_KEY or GEMINI_API_KEY, or disable the LLM flag.",
		},
	},
	{
		err: ErrConfigInvalidLLM,
		info: ErrorInfo{
			Message: "Invalid LLM configuration.",
			Action:  "Check the 'llm' section in config.yaml.",
		},
	},
	{
		err: ErrConfigInvalidKB,
		info: ErrorInfo{
			Message: "Invalid knowledge base configuration.",
			Action:  "Check the 'kb' section in config.yaml.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Unsupported output format.",
			Action:  "Use --output text or --output json.",
		},
	},
	{
		err: ErrMenuCanceled,
		info: ErrorInfo{
			Message: "Prompt was canceled.",
		},
	},
	{
		err: ErrInteractiveRequired,
		info: ErrorInfo{
			Message: "Interactive clarification needs a terminal.",
			Action:  "Run in a terminal or drop --interactive.",
		},
	},
}

func getErrorInfo(err error) ErrorInfo {
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}
	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly message along with a suggested action.
// The action is empty when there is nothing obvious to do.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
