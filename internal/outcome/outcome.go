// Package outcome defines the terminal result states a conformance check can
// reduce to. Every check produces exactly one Outcome; there are no
// transitions between states.
package outcome

import "fmt"

// Status is the terminal state of a single conformance check.
type Status string

const (
	// StatusPass means the deployment satisfied the contract under test.
	StatusPass Status = "PASS"
	// StatusFail means an observable conformance violation.
	StatusFail Status = "FAIL"
	// StatusNA means the check was structurally inapplicable, for example a
	// parameterized endpoint with no discovered resources to probe.
	StatusNA Status = "NA"
	// StatusManual means the property exists but cannot be verified
	// automatically, for example a response with no schema on record.
	StatusManual Status = "MANUAL"
	// StatusWarning means conformant but questionable behavior.
	StatusWarning Status = "WARNING"
)

// severity orders statuses for report sorting, most urgent first.
var severity = map[Status]int{
	StatusFail:    0,
	StatusWarning: 1,
	StatusManual:  2,
	StatusNA:      3,
	StatusPass:    4,
}

// Rank returns the sort rank of a status, most urgent first. Unknown
// statuses sort last.
func (s Status) Rank() int {
	if r, ok := severity[s]; ok {
		return r
	}
	return len(severity)
}

// Outcome is the immutable result of one conformance check.
type Outcome struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// String renders an outcome the way it appears in a test log line.
func (o Outcome) String() string {
	if o.Message == "" {
		return fmt.Sprintf("%s: %s", o.Status, o.Name)
	}
	return fmt.Sprintf("%s: %s (%s)", o.Status, o.Name, o.Message)
}

// Check names a conformance check and mints its single terminal outcome.
type Check struct {
	name string
}

// NewCheck creates a check with the given display name, conventionally
// "METHOD /path" for endpoint probes.
func NewCheck(name string) *Check {
	return &Check{name: name}
}

// Name returns the check's display name.
func (c *Check) Name() string {
	return c.name
}

// Pass reduces the check to PASS.
func (c *Check) Pass() Outcome {
	return Outcome{Name: c.name, Status: StatusPass}
}

// Fail reduces the check to FAIL with a formatted violation message.
func (c *Check) Fail(format string, args ...interface{}) Outcome {
	return Outcome{Name: c.name, Status: StatusFail, Message: fmt.Sprintf(format, args...)}
}

// NA reduces the check to NA with a reason.
func (c *Check) NA(format string, args ...interface{}) Outcome {
	return Outcome{Name: c.name, Status: StatusNA, Message: fmt.Sprintf(format, args...)}
}

// Manual reduces the check to MANUAL with a reason.
func (c *Check) Manual(format string, args ...interface{}) Outcome {
	return Outcome{Name: c.name, Status: StatusManual, Message: fmt.Sprintf(format, args...)}
}

// Warning reduces the check to WARNING with a reason.
func (c *Check) Warning(format string, args ...interface{}) Outcome {
	return Outcome{Name: c.name, Status: StatusWarning, Message: fmt.Sprintf(format, args...)}
}
