package mapping

import "fmt"

// Diagnostics is an ordered accumulator of human-readable data-quality
// messages collected during one mapping operation. It never aborts anything;
// the caller logs or reports the messages after the mapping completes.
type Diagnostics struct {
	messages []string
}

// Addf formats and appends one message.
func (d *Diagnostics) Addf(format string, args ...any) {
	d.messages = append(d.messages, fmt.Sprintf(format, args...))
}

// Messages returns the collected messages in insertion order.
func (d *Diagnostics) Messages() []string {
	return d.messages
}

// Len returns the number of collected messages.
func (d *Diagnostics) Len() int {
	return len(d.messages)
}
