package sys

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memPersister keeps the last saved map in memory.
type memPersister struct {
	mu      sync.Mutex
	initial map[string][]*Alert
	saved   map[string][]Alert
	saves   int
	failErr error
	loadErr error
}

func (m *memPersister) Load() (map[string][]*Alert, error) {
	if m.initial == nil {
		return map[string][]*Alert{}, m.loadErr
	}
	return m.initial, m.loadErr
}

func (m *memPersister) Save(alerts map[string][]*Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saves++
	if m.failErr != nil {
		return m.failErr
	}
	m.saved = make(map[string][]Alert, len(alerts))
	for owner, list := range alerts {
		for _, a := range list {
			m.saved[owner] = append(m.saved[owner], *a)
		}
	}
	return nil
}

var bookNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestBook(t *testing.T, store *memPersister) *AlertBook {
	t.Helper()
	book, err := NewAlertBook(store, DefaultAlertLimits(), NewTimeParser(nil))
	require.NoError(t, err)
	return book
}

func TestAlertBookCreateAndList(t *testing.T) {
	store := &memPersister{}
	book := newTestBook(t, store)

	a, err := book.Create("42", "  standup  ", "in 10m", "", bookNow, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "standup", a.Label)
	assert.Equal(t, bookNow.Add(10*time.Minute), a.DueAt)
	assert.NotEmpty(t, a.ID)

	entries := book.List("42", bookNow)
	require.Len(t, entries, 1)
	assert.Equal(t, 0, entries[0].Index)
	assert.Equal(t, 10*time.Minute, entries[0].Remaining)

	assert.Len(t, store.saved["42"], 1)
	assert.Empty(t, book.List("7", bookNow))
}

func TestAlertBookCreateValidation(t *testing.T) {
	book := newTestBook(t, &memPersister{})
	long := make([]byte, 201)
	for i := range long {
		long[i] = 'x'
	}

	tests := []struct {
		name       string
		label      string
		when       string
		recurrence string
		want       error
	}{
		{"empty label", "   ", "10m", "", ErrLabelEmpty},
		{"long label", string(long), "10m", "", ErrLabelTooLong},
		{"bad time", "x", "someday", "", ErrTimeUnparseable},
		{"due now", "x", "0s", "", ErrPastTime},
		{"bad recurrence", "x", "10m", "often", ErrRecurrenceInvalid},
		{"zero recurrence", "x", "10m", "0m", ErrRecurrenceInvalid},
		{"short recurrence", "x", "10m", "30s", ErrRecurrenceTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := book.Create("42", tt.label, tt.when, tt.recurrence, bookNow, time.UTC)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Zero(t, book.Count())
}

func TestAlertBookPastBoundary(t *testing.T) {
	book := newTestBook(t, &memPersister{})

	_, err := book.Create("42", "now", "0s", "", bookNow, time.UTC)
	assert.ErrorIs(t, err, ErrPastTime)

	a, err := book.Create("42", "soon", "1s", "", bookNow, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, bookNow.Add(time.Second), a.DueAt)
}

func TestAlertBookSubSecondTruncated(t *testing.T) {
	book := newTestBook(t, &memPersister{})
	now := bookNow.Add(300 * time.Millisecond)

	a, err := book.Create("42", "x", "1s", "", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, bookNow.Add(time.Second), a.DueAt)
}

func TestAlertBookLimit(t *testing.T) {
	book := newTestBook(t, &memPersister{})

	for i := 0; i < 10; i++ {
		_, err := book.Create("42", "x", "1h", "", bookNow, time.UTC)
		require.NoError(t, err)
	}

	_, err := book.Create("42", "eleventh", "1h", "", bookNow, time.UTC)
	assert.ErrorIs(t, err, ErrLimitReached)
	assert.Equal(t, 10, book.OwnerCount("42"))

	_, err = book.Create("7", "other owner", "1h", "", bookNow, time.UTC)
	assert.NoError(t, err)
}

func TestAlertBookCancel(t *testing.T) {
	store := &memPersister{}
	book := newTestBook(t, store)

	first, err := book.Create("42", "first", "1h", "", bookNow, time.UTC)
	require.NoError(t, err)
	second, err := book.Create("42", "second", "2h", "", bookNow, time.UTC)
	require.NoError(t, err)

	_, err = book.Cancel("42", 2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = book.Cancel("42", -1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	removed, err := book.Cancel("42", 0)
	require.NoError(t, err)
	assert.Equal(t, first.ID, removed.ID)

	entries := book.List("42", bookNow)
	require.Len(t, entries, 1)
	assert.Equal(t, second.ID, entries[0].Alert.ID)
	assert.Equal(t, 0, entries[0].Index)

	_, err = book.CancelID("42", first.ID)
	assert.ErrorIs(t, err, ErrAlertNotFound)
	_, err = book.CancelID("7", second.ID)
	assert.ErrorIs(t, err, ErrAlertNotFound, "owners cannot touch each other's alerts")

	_, err = book.CancelID("42", second.ID)
	require.NoError(t, err)
	assert.Zero(t, book.Owners(), "empty owner key is dropped")
	assert.NotContains(t, store.saved, "42")
}

func TestAlertBookCancelAllIdempotent(t *testing.T) {
	book := newTestBook(t, &memPersister{})
	for i := 0; i < 3; i++ {
		_, err := book.Create("42", "x", "1h", "", bookNow, time.UTC)
		require.NoError(t, err)
	}

	n, err := book.CancelAll("42")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = book.CancelAll("42")
	assert.ErrorIs(t, err, ErrNoAlerts)
	assert.Zero(t, n)
	assert.Zero(t, book.Count())
}

func TestAlertBookSnooze(t *testing.T) {
	book := newTestBook(t, &memPersister{})
	a, err := book.Create("42", "x", "1h", "", bookNow, time.UTC)
	require.NoError(t, err)

	snoozed, err := book.Snooze("42", 0)
	require.NoError(t, err)
	assert.Equal(t, a.DueAt.Add(10*time.Minute), snoozed.DueAt)

	snoozed, err = book.SnoozeID("42", a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.DueAt.Add(20*time.Minute), snoozed.DueAt)

	_, err = book.Snooze("42", 5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = book.SnoozeID("42", "missing")
	assert.ErrorIs(t, err, ErrAlertNotFound)
}

func TestAlertBookNotPersisted(t *testing.T) {
	store := &memPersister{failErr: errors.New("disk full")}
	book := newTestBook(t, store)

	a, err := book.Create("42", "x", "1h", "", bookNow, time.UTC)
	require.ErrorIs(t, err, ErrNotPersisted)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, 1, book.Count(), "mutation is kept in memory")

	store.failErr = nil
	require.NoError(t, book.Flush())
	assert.Len(t, store.saved["42"], 1)
}

func TestAlertBookLoadErrorGivesEmptyBook(t *testing.T) {
	store := &memPersister{loadErr: ErrAlertFileCorrupt}
	book, err := NewAlertBook(store, DefaultAlertLimits(), nil)
	require.ErrorIs(t, err, ErrAlertFileCorrupt)
	require.NotNil(t, book)
	assert.Zero(t, book.Count())
}

func TestAlertBookDueSnapshotOrder(t *testing.T) {
	store := &memPersister{initial: map[string][]*Alert{
		"b": {
			{ID: "b1", Owner: "b", Label: "b1", DueAt: bookNow.Add(-time.Minute)},
			{ID: "b2", Owner: "b", Label: "b2", DueAt: bookNow.Add(time.Minute)},
			{ID: "b3", Owner: "b", Label: "b3", DueAt: bookNow},
		},
		"a": {
			{ID: "a1", Owner: "a", Label: "a1", DueAt: bookNow.Add(-time.Hour)},
		},
	}}
	book := newTestBook(t, store)

	due := book.DueSnapshot(bookNow)
	ids := make([]string, 0, len(due))
	for _, a := range due {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"a1", "b1", "b3"}, ids)

	next, ok := book.NextDue()
	require.True(t, ok)
	assert.Equal(t, bookNow.Add(-time.Hour), next)
}

func TestAlertBookSettle(t *testing.T) {
	due := bookNow.Add(-time.Minute)
	store := &memPersister{initial: map[string][]*Alert{
		"42": {
			{ID: "once", Owner: "42", Label: "once", DueAt: due},
			{ID: "hourly", Owner: "42", Label: "hourly", DueAt: due, Recurrence: "1h", Failures: 1},
			{ID: "flaky", Owner: "42", Label: "flaky", DueAt: due},
			{ID: "doomed", Owner: "42", Label: "doomed", DueAt: due, Failures: 2},
			{ID: "weird", Owner: "42", Label: "weird", DueAt: due, Recurrence: "sometimes"},
		},
	}}
	book := newTestBook(t, store)

	stats, err := book.Settle([]DeliveryOutcome{
		{Owner: "42", ID: "once", FiredAt: due, Delivered: true},
		{Owner: "42", ID: "hourly", FiredAt: due, Delivered: true},
		{Owner: "42", ID: "flaky", FiredAt: due, Delivered: false},
		{Owner: "42", ID: "doomed", FiredAt: due, Delivered: false},
		{Owner: "42", ID: "weird", FiredAt: due, Delivered: true},
		{Owner: "42", ID: "gone", FiredAt: due, Delivered: true},
	}, 3, bookNow)
	require.NoError(t, err)
	assert.Equal(t, SettleStats{Removed: 3, Rescheduled: 1, Retrying: 1, Stale: 1}, stats)

	remaining := store.saved["42"]
	require.Len(t, remaining, 2)

	assert.Equal(t, "hourly", remaining[0].ID)
	assert.Equal(t, due.Add(time.Hour), remaining[0].DueAt)
	assert.Zero(t, remaining[0].Failures)

	assert.Equal(t, "flaky", remaining[1].ID)
	assert.Equal(t, due, remaining[1].DueAt)
	assert.Equal(t, 1, remaining[1].Failures)
}

func TestAlertBookSettleSkipsSnoozed(t *testing.T) {
	book := newTestBook(t, &memPersister{})
	a, err := book.Create("42", "x", "1m", "", bookNow, time.UTC)
	require.NoError(t, err)

	fired := book.DueSnapshot(a.DueAt)
	require.Len(t, fired, 1)

	_, err = book.SnoozeID("42", a.ID)
	require.NoError(t, err)

	stats, err := book.Settle([]DeliveryOutcome{{Owner: "42", ID: a.ID, FiredAt: fired[0].DueAt, Delivered: true}}, 3, a.DueAt)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Stale)
	assert.Equal(t, 1, book.Count(), "snoozed alert survives the tick that fired it")
}

func TestAlertBookSettleSkipsMissedPeriods(t *testing.T) {
	fired := bookNow.Add(-25*time.Hour - 30*time.Second)
	store := &memPersister{initial: map[string][]*Alert{
		"7": {{ID: "minutely", Owner: "7", Label: "stretch", DueAt: fired, Recurrence: "1m"}},
	}}
	book := newTestBook(t, store)

	stats, err := book.Settle([]DeliveryOutcome{{Owner: "7", ID: "minutely", FiredAt: fired, Delivered: true}}, 3, bookNow)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Rescheduled)

	got := store.saved["7"][0].DueAt
	assert.Equal(t, bookNow.Add(30*time.Second), got, "next slot stays on the fired grid")
	assert.Zero(t, got.Sub(fired)%time.Minute)
}

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"on time", bookNow, bookNow.Add(time.Hour)},
		{"late within the period", bookNow.Add(59 * time.Minute), bookNow.Add(time.Hour)},
		{"exactly one period late", bookNow.Add(time.Hour), bookNow.Add(2 * time.Hour)},
		{"several periods late", bookNow.Add(3*time.Hour + time.Minute), bookNow.Add(4 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextOccurrence(bookNow, time.Hour, tt.now))
		})
	}
}

func TestAlertBookConcurrentMutations(t *testing.T) {
	store := &memPersister{}
	book := newTestBook(t, store)
	due := bookNow.Add(time.Minute)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		owner := string(rune('a' + w))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 40; i++ {
				_, _ = book.Create(owner, "job", "1m", "", bookNow, time.UTC)
				_ = book.List(owner, bookNow)
				if i%2 == 0 {
					_, _ = book.Cancel(owner, 0)
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 40; i++ {
			var outcomes []DeliveryOutcome
			for _, a := range book.DueSnapshot(due) {
				outcomes = append(outcomes, DeliveryOutcome{Owner: a.Owner, ID: a.ID, FiredAt: a.DueAt, Delivered: true})
			}
			_, err := book.Settle(outcomes, 3, due)
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	for w := 0; w < 4; w++ {
		assert.LessOrEqual(t, book.OwnerCount(string(rune('a'+w))), DefaultAlertLimits().MaxPerOwner)
	}
	assert.Equal(t, book.Count(), len(book.DueSnapshot(due)))
}
