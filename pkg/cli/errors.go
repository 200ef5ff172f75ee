package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anthonypate54/familynest/pkg/types"
)

// ErrorMessages maps gateway error codes to human-readable messages
var ErrorMessages = map[types.ErrorCode]string{
	types.ErrCodePermissionDenied:     "Library access has not been granted",
	types.ErrCodeContainerUnavailable: "The cloud folder is not available",
	types.ErrCodeContainerAccess:      "The cloud folder could not be read",
	types.ErrCodeNotFound:             "Resource not found",
	types.ErrCodeQueryFailed:          "The media catalog query failed",
	types.ErrCodeResolution:           "The resource could not be resolved to a local file",
	types.ErrCodeSessionBusy:          "Another picker session is already open",
	types.ErrCodeInvalidArgument:      "Invalid request parameters",
	types.ErrCodeTimeout:              "Request timed out",
	types.ErrCodePickerUnavailable:    "The document picker is not available",
}

// ErrorSuggestions provides helpful suggestions for specific error codes
var ErrorSuggestions = map[types.ErrorCode][]string{
	types.ErrCodePermissionDenied: {
		"Record the user's answer: " + CodeStyle.Render("familynest permission grant photo"),
		"Check current state: " + CodeStyle.Render("familynest permission show"),
	},
	types.ErrCodeContainerUnavailable: {
		"Set " + CodeStyle.Render("cloud.rootPath") + " in the gateway config",
		"Check that the synced folder exists on disk",
	},
	types.ErrCodeSessionBusy: {
		"Finish or cancel the pending session: " + CodeStyle.Render("familynest picker show"),
	},
	types.ErrCodeResolution: {
		"The handle may have expired; pick the document again",
	},
	types.ErrCodeTimeout: {
		"The backend may be slow to respond",
		"Try again in a few moments",
	},
}

// FormatError converts an error to a human-readable message.
// Gateway errors carrying a code get a friendly message.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var rerr *types.ResourceError
	if errors.As(err, &rerr) {
		if msg, ok := ErrorMessages[rerr.Code]; ok {
			desc := rerr.Message
			// Include original description if it adds context
			if desc != "" && !strings.Contains(strings.ToLower(msg), strings.ToLower(desc)) {
				return fmt.Sprintf("%s (%s)", msg, desc)
			}
			return msg
		}
		return rerr.Message
	}

	return cleanErrorMessage(err.Error())
}

// GetErrorSuggestions returns helpful suggestions for an error
func GetErrorSuggestions(err error) []string {
	if err == nil {
		return nil
	}

	if suggestions, ok := ErrorSuggestions[types.CodeOf(err)]; ok {
		return suggestions
	}

	if strings.Contains(err.Error(), "failed to reach gateway") {
		return []string{
			"Check that the gateway is running",
			"Verify the gateway address: " + CodeStyle.Render("--gateway <addr>"),
		}
	}
	if strings.Contains(err.Error(), "401") {
		return []string{"Pass the admin token: " + CodeStyle.Render("--token <token>")}
	}
	return nil
}

// cleanErrorMessage cleans up common error message patterns
func cleanErrorMessage(msg string) string {
	// Remove redundant prefixes
	msg = strings.TrimPrefix(msg, "error: ")
	msg = strings.TrimPrefix(msg, "Error: ")

	// For deeply nested errors, just show the most relevant part
	if parts := strings.Split(msg, ": "); len(parts) > 3 {
		msg = parts[0] + ": " + parts[len(parts)-1]
	}

	return msg
}

// PrintFormattedError prints an error with styling and optional suggestions
func PrintFormattedError(title string, err error) {
	fmt.Println()
	PrintErrorMsg(title)

	if err != nil {
		fmt.Printf("  %s\n", DimStyle.Render(FormatError(err)))

		// Show suggestions if available
		if suggestions := GetErrorSuggestions(err); len(suggestions) > 0 {
			PrintSuggestions("Suggestions:", suggestions)
		}
	}
	fmt.Println()
}
