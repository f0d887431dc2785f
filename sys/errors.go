package sys

import "errors"

// Validation and lookup errors returned by AlertBook. None of them leave
// the book modified.
var (
	ErrLabelEmpty         = errors.New("alert label is empty")
	ErrLabelTooLong       = errors.New("alert label is too long")
	ErrTimeUnparseable    = errors.New("could not parse alert time")
	ErrPastTime           = errors.New("alert time is not in the future")
	ErrRecurrenceInvalid  = errors.New("invalid recurrence")
	ErrRecurrenceTooShort = errors.New("recurrence is shorter than the minimum interval")
	ErrLimitReached       = errors.New("maximum number of alerts reached")
	ErrIndexOutOfRange    = errors.New("alert index out of range")
	ErrAlertNotFound      = errors.New("alert not found")
	ErrNoAlerts           = errors.New("no active alerts")
)

// ErrNotPersisted wraps a save failure after an in-memory mutation that
// was kept. Callers treat it as a success with a durability warning.
var ErrNotPersisted = errors.New("alerts not persisted")

// ErrAlertFileCorrupt is returned by AlertFile.Load for undecodable JSON.
var ErrAlertFileCorrupt = errors.New("alert file is corrupt")
