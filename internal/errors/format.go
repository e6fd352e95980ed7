package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// FormatForCLI formats an error for terminal display.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	var ge *GrandPyError
	if !errors.As(err, &ge) {
		ge = Wrap(ErrCodeInternal, err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Error: %s\n", ge.Message))
	if ge.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  Hint: %s\n", ge.Suggestion))
	}
	sb.WriteString(fmt.Sprintf("  Code: %s\n", ge.Code))

	return sb.String()
}

// LogAttrs returns slog attributes describing err.
func LogAttrs(err error) []any {
	if err == nil {
		return nil
	}

	var ge *GrandPyError
	if !errors.As(err, &ge) {
		return []any{slog.String("error", err.Error())}
	}

	attrs := []any{
		slog.String("error_code", ge.Code),
		slog.String("error", ge.Message),
		slog.String("severity", string(ge.Severity)),
	}
	if ge.Cause != nil {
		attrs = append(attrs, slog.String("cause", ge.Cause.Error()))
	}
	for k, v := range ge.Details {
		attrs = append(attrs, slog.String("detail_"+k, v))
	}
	return attrs
}
