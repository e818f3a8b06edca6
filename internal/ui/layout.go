package ui

import "time"

// Terminal width below which the header drops secondary fields.
const LayoutCompactWidth = 100

const (
	// LogTailLines is how many lines of the application log the logs view keeps.
	LogTailLines = 500

	// DefaultUIInterval is how often the UI re-reads the store.
	DefaultUIInterval = time.Second

	// OperationTimeout bounds a single add, edit, delete or refresh.
	OperationTimeout = 20 * time.Second

	// chromeHeight is the number of lines used by header, tabs and footer.
	chromeHeight = 4
)
