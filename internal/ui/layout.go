package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the detail pane is
	// hidden and the header drops secondary indicators.
	LayoutCompactWidth = 100

	// LayoutExtraWideWidth is the threshold for a 55/45 list/detail split.
	LayoutExtraWideWidth = 160
)

// Activity log limits.
const (
	// ActivityLineLimit is the number of log lines read from the end of the
	// log file.
	ActivityLineLimit = 2000
)

// Timing constants.
const (
	// OpTimeout bounds one collection operation started from the UI, on top
	// of the client's own request timeout.
	OpTimeout = 30 * time.Second

	// FlashDuration is how long a notification stays in the command bar.
	FlashDuration = 4 * time.Second

	// SearchDebounce delays the list request while the search is typed.
	SearchDebounce = 350 * time.Millisecond
)

// Modal sizes.
const (
	formWidth    = 64
	confirmWidth = 48
	helpWidth    = 96
	loginWidth   = 48
)
