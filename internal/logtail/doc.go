// Package logtail reads the end of the application log for the logs view.
//
// Read extracts the last N lines with a ring buffer, so the file is scanned
// once without holding it in memory. ReadEntries additionally decodes the
// JSON lines written by the logger into Entry values, which Format renders
// as "15:04:05 LEVEL message key=value".
package logtail
