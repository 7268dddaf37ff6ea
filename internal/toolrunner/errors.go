package toolrunner

import "errors"

// ErrToolTimeout is returned (wrapped) when a subprocess is killed after
// exceeding its configured timeout.
var ErrToolTimeout = errors.New("toolrunner: tool timed out")

// ErrUnknownTool is returned when a caller names a tool not in the static
// table.
var ErrUnknownTool = errors.New("toolrunner: unknown tool")
