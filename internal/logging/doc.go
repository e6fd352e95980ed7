// Package logging configures structured logging for GrandPy.
//
// Logs are JSON lines written through log/slog. With a log file configured,
// lines go to a size-rotated file and, optionally, to stderr as well; the
// viewer reads them back for "grandpy logs".
package logging
