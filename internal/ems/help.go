package ems

import "io"

const helpText = `Available commands:
  CREATE <event_id> <num_rows> <num_columns>
  RESERVE <event_id> [(<x1>,<y1>) (<x2>,<y2>) ...]
  SHOW <event_id>
  LIST
  WAIT <delay_ms> [thread_id]
  BARRIER
  HELP
`

// Help writes the command summary.
func Help(w io.Writer) error {
	if _, err := io.WriteString(w, helpText); err != nil {
		return NewStreamError("write help", err)
	}
	return nil
}
