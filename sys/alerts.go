package sys

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Alert is one scheduled, optionally recurring, notification.
type Alert struct {
	ID         string
	Owner      string
	Label      string
	DueAt      time.Time
	Recurrence string
	Failures   int
}

// Interval returns the parsed recurrence. It reports false for one-shot
// alerts and for recurrence text that does not parse to a positive duration.
func (a Alert) Interval() (time.Duration, bool) {
	if a.Recurrence == "" {
		return 0, false
	}
	d, ok := ParseDuration(a.Recurrence)
	if !ok || d <= 0 {
		return 0, false
	}
	return d, true
}

type AlertLimits struct {
	MaxPerOwner   int
	MaxLabel      int
	MinRecurrence time.Duration
	SnoozeStep    time.Duration
}

func DefaultAlertLimits() AlertLimits {
	return AlertLimits{
		MaxPerOwner:   10,
		MaxLabel:      200,
		MinRecurrence: time.Minute,
		SnoozeStep:    10 * time.Minute,
	}
}

func (l AlertLimits) Validate() error {
	switch {
	case l.MaxPerOwner < 1:
		return fmt.Errorf("ALERT_MAX_PER_OWNER must be at least 1")
	case l.MaxLabel < 1:
		return fmt.Errorf("alert label limit must be at least 1")
	case l.MinRecurrence <= 0:
		return fmt.Errorf("ALERT_MIN_RECURRENCE must be positive")
	case l.SnoozeStep <= 0:
		return fmt.Errorf("ALERT_SNOOZE must be positive")
	}
	return nil
}

// AlertPersister loads and saves the complete alert map.
type AlertPersister interface {
	Load() (map[string][]*Alert, error)
	Save(alerts map[string][]*Alert) error
}

// AlertEntry is a pending alert as shown to its owner. Index is the
// alert's position in the owner's list, which Cancel and Snooze accept.
type AlertEntry struct {
	Index     int
	Alert     Alert
	Remaining time.Duration
}

// DeliveryOutcome reports what happened to one alert taken from
// DueSnapshot. FiredAt is the DueAt the snapshot saw.
type DeliveryOutcome struct {
	Owner     string
	ID        string
	FiredAt   time.Time
	Delivered bool
}

type SettleStats struct {
	Removed     int
	Rescheduled int
	Retrying    int
	Stale       int
}

// AlertBook owns every alert. All reads and read-modify-persist sequences
// hold mu, so command handlers and the scheduler never interleave inside
// one.
type AlertBook struct {
	mu     sync.Mutex
	alerts map[string][]*Alert
	store  AlertPersister
	limits AlertLimits
	parser *TimeParser
}

// NewAlertBook loads the persisted alerts. A load error is returned
// alongside a usable, empty book.
func NewAlertBook(store AlertPersister, limits AlertLimits, parser *TimeParser) (*AlertBook, error) {
	b := &AlertBook{
		alerts: make(map[string][]*Alert),
		store:  store,
		limits: limits,
		parser: parser,
	}
	if parser == nil {
		b.parser = NewTimeParser(nil)
	}

	loaded, err := store.Load()
	for owner, list := range loaded {
		if len(list) > 0 {
			b.alerts[owner] = list
		}
	}
	return b, err
}

func (b *AlertBook) Limits() AlertLimits {
	return b.limits
}

// Create validates and schedules a new alert. when is parsed in loc.
func (b *AlertBook) Create(owner, label, when, recurrence string, now time.Time, loc *time.Location) (Alert, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Alert{}, ErrLabelEmpty
	}
	if utf8.RuneCountInString(label) > b.limits.MaxLabel {
		return Alert{}, ErrLabelTooLong
	}

	now = now.UTC()
	due, ok := b.parser.ParseAbsolute(when, now, loc)
	if !ok {
		return Alert{}, ErrTimeUnparseable
	}
	due = due.Truncate(time.Second)
	if !due.After(now) {
		return Alert{}, ErrPastTime
	}

	recurrence = strings.TrimSpace(recurrence)
	if recurrence != "" {
		interval, ok := ParseDuration(recurrence)
		if !ok || interval <= 0 {
			return Alert{}, ErrRecurrenceInvalid
		}
		if interval < b.limits.MinRecurrence {
			return Alert{}, ErrRecurrenceTooShort
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.alerts[owner]) >= b.limits.MaxPerOwner {
		return Alert{}, ErrLimitReached
	}

	a := &Alert{
		ID:         uuid.NewString(),
		Owner:      owner,
		Label:      label,
		DueAt:      due,
		Recurrence: recurrence,
	}
	b.alerts[owner] = append(b.alerts[owner], a)

	return *a, b.persistLocked()
}

// List returns the owner's alerts that are still in the future.
func (b *AlertBook) List(owner string, now time.Time) []AlertEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	var entries []AlertEntry
	for i, a := range b.alerts[owner] {
		if !a.DueAt.After(now) {
			continue
		}
		entries = append(entries, AlertEntry{
			Index:     i,
			Alert:     *a,
			Remaining: a.DueAt.Sub(now),
		})
	}
	return entries
}

// Cancel removes the alert at index in the owner's list.
func (b *AlertBook) Cancel(owner string, index int) (Alert, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.alerts[owner]
	if index < 0 || index >= len(list) {
		return Alert{}, ErrIndexOutOfRange
	}
	return b.removeLocked(owner, index)
}

// CancelID removes the owner's alert with the given ID.
func (b *AlertBook) CancelID(owner, id string) (Alert, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	index := b.indexLocked(owner, id)
	if index < 0 {
		return Alert{}, ErrAlertNotFound
	}
	return b.removeLocked(owner, index)
}

// CancelAll drops every alert the owner has and returns how many there
// were. An owner with nothing scheduled gets ErrNoAlerts every time.
func (b *AlertBook) CancelAll(owner string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.alerts[owner])
	if n == 0 {
		return 0, ErrNoAlerts
	}
	delete(b.alerts, owner)
	return n, b.persistLocked()
}

// Snooze pushes the alert at index back by the configured snooze step.
func (b *AlertBook) Snooze(owner string, index int) (Alert, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.alerts[owner]
	if index < 0 || index >= len(list) {
		return Alert{}, ErrIndexOutOfRange
	}
	return b.snoozeLocked(list[index])
}

// SnoozeID pushes the owner's alert with the given ID back by the snooze step.
func (b *AlertBook) SnoozeID(owner, id string) (Alert, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	index := b.indexLocked(owner, id)
	if index < 0 {
		return Alert{}, ErrAlertNotFound
	}
	return b.snoozeLocked(b.alerts[owner][index])
}

// DueSnapshot copies every alert due at or before now. Owners come in
// sorted order, alerts in list order.
func (b *AlertBook) DueSnapshot(now time.Time) []Alert {
	b.mu.Lock()
	defer b.mu.Unlock()

	var due []Alert
	for _, owner := range b.ownersLocked() {
		for _, a := range b.alerts[owner] {
			if !a.DueAt.After(now) {
				due = append(due, *a)
			}
		}
	}
	return due
}

// Settle applies delivery outcomes. An alert that was cancelled or
// snoozed after the snapshot was taken is left alone. A failed delivery
// is retried on later ticks until maxAttempts failures, after which the
// alert is consumed as if delivered. Recurring alerts advance from the
// due time that fired, not from now; periods missed while the bot was
// down are skipped so the next slot is after now.
func (b *AlertBook) Settle(outcomes []DeliveryOutcome, maxAttempts int, now time.Time) (SettleStats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var stats SettleStats
	changed := false

	for _, o := range outcomes {
		index := b.indexLocked(o.Owner, o.ID)
		if index < 0 || !b.alerts[o.Owner][index].DueAt.Equal(o.FiredAt) {
			stats.Stale++
			continue
		}
		a := b.alerts[o.Owner][index]
		changed = true

		if !o.Delivered {
			a.Failures++
			if a.Failures < maxAttempts {
				stats.Retrying++
				continue
			}
			LogScheduler(MsgSchedulerGaveUp, a.ID, a.Owner, a.Failures)
		}

		if interval, ok := a.Interval(); ok {
			a.DueAt = nextOccurrence(o.FiredAt, interval, now)
			a.Failures = 0
			stats.Rescheduled++
			continue
		}
		if a.Recurrence != "" {
			LogScheduler(MsgSchedulerBadRecurrence, a.ID, a.Recurrence)
		}
		b.alerts[o.Owner] = slices.Delete(b.alerts[o.Owner], index, index+1)
		if len(b.alerts[o.Owner]) == 0 {
			delete(b.alerts, o.Owner)
		}
		stats.Removed++
	}

	if !changed {
		return stats, nil
	}
	return stats, b.persistLocked()
}

// nextOccurrence is the first fired+k*interval (k >= 1) strictly after now.
func nextOccurrence(fired time.Time, interval time.Duration, now time.Time) time.Time {
	next := fired.Add(interval)
	if next.After(now) {
		return next
	}
	missed := now.Sub(fired) / interval
	return fired.Add((missed + 1) * interval)
}

// Flush writes the current map regardless of pending changes.
func (b *AlertBook) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.persistLocked()
}

// Count returns the total number of stored alerts.
func (b *AlertBook) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, list := range b.alerts {
		n += len(list)
	}
	return n
}

// Owners returns how many owners have at least one alert.
func (b *AlertBook) Owners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.alerts)
}

// OwnerCount returns how many alerts one owner has, due or not.
func (b *AlertBook) OwnerCount(owner string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.alerts[owner])
}

// NextDue returns the earliest due time across all owners.
func (b *AlertBook) NextDue() (time.Time, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var next time.Time
	for _, list := range b.alerts {
		for _, a := range list {
			if next.IsZero() || a.DueAt.Before(next) {
				next = a.DueAt
			}
		}
	}
	return next, !next.IsZero()
}

func (b *AlertBook) snoozeLocked(a *Alert) (Alert, error) {
	a.DueAt = a.DueAt.Add(b.limits.SnoozeStep)
	a.Failures = 0
	return *a, b.persistLocked()
}

func (b *AlertBook) removeLocked(owner string, index int) (Alert, error) {
	removed := *b.alerts[owner][index]
	b.alerts[owner] = slices.Delete(b.alerts[owner], index, index+1)
	if len(b.alerts[owner]) == 0 {
		delete(b.alerts, owner)
	}
	return removed, b.persistLocked()
}

func (b *AlertBook) indexLocked(owner, id string) int {
	return slices.IndexFunc(b.alerts[owner], func(a *Alert) bool { return a.ID == id })
}

func (b *AlertBook) ownersLocked() []string {
	owners := make([]string, 0, len(b.alerts))
	for owner := range b.alerts {
		owners = append(owners, owner)
	}
	slices.Sort(owners)
	return owners
}

func (b *AlertBook) persistLocked() error {
	if err := b.store.Save(b.alerts); err != nil {
		LogError(MsgAlertFileSaveFail, err)
		return fmt.Errorf("%w: %v", ErrNotPersisted, err)
	}
	return nil
}
