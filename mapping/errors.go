package mapping

import "fmt"

// SentinelDataError is returned when a source record carries one of the
// known placeholder values from test entries. Unlike ordinary validation
// failures this is fatal: dummy data must never be pushed to the production
// catalogue.
type SentinelDataError struct {
	Key   string
	Value string
}

func (e *SentinelDataError) Error() string {
	return fmt.Sprintf("known placeholder value %q in %q: record is dummy data and must not be synchronized", e.Value, e.Key)
}

// sentinelValues are the placeholder values observed in known test entries,
// detected verbatim.
var sentinelValues = map[string]bool{
	"www.mymedia.org":  true,
	"www.ausecase.org": true,
}
