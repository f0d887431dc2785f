package home

import (
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/spoopinatural/jagerbot/sys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discardStore struct{}

func (discardStore) Load() (map[string][]*sys.Alert, error) { return nil, nil }
func (discardStore) Save(map[string][]*sys.Alert) error     { return nil }

func TestAlertOutcome(t *testing.T) {
	limits := sys.DefaultAlertLimits()

	assert.Equal(t, "ok", alertOutcome("ok", nil, limits, 0))
	assert.Equal(t, "ok"+sys.MsgAlertNotSavedWarning,
		alertOutcome("ok", fmt.Errorf("%w: disk full", sys.ErrNotPersisted), limits, 0))
	assert.Equal(t, fmt.Sprintf(sys.ErrAlertLimit, 10), alertOutcome("ok", sys.ErrLimitReached, limits, 0))
	assert.Equal(t, fmt.Sprintf(sys.ErrAlertIndexRange, 4), alertOutcome("ok", sys.ErrIndexOutOfRange, limits, 4))
	assert.Equal(t, "❌ Recurring alerts must be at least 1m apart.", alertOutcome("ok", sys.ErrRecurrenceTooShort, limits, 0))
	assert.Equal(t, sys.ErrAlertInternal, alertOutcome("ok", errors.New("boom"), limits, 0))
}

func TestFormatReminderRelativeTime(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		gap  time.Duration
		want string
	}{
		{30 * time.Second, "in less than a minute"},
		{time.Minute, "in 1 minute"},
		{45 * time.Minute, "in 45 minutes"},
		{3 * time.Hour, "in 3 hours"},
		{2 * 24 * time.Hour, "in 2 days"},
		{14 * 24 * time.Hour, "in 2 weeks"},
		{27 * 24 * time.Hour, "in 3 weeks"},
		{28 * 24 * time.Hour, "in 4 weeks"},
		{29*24*time.Hour + 23*time.Hour, "in 4 weeks"},
		{30 * 24 * time.Hour, "in 1 month"},
		{90 * 24 * time.Hour, "in 3 months"},
		{400 * 24 * time.Hour, "in 1 year"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatReminderRelativeTime(base, base.Add(tt.gap)))
		})
	}
}

func TestShortDuration(t *testing.T) {
	assert.Equal(t, "10m", shortDuration(10*time.Minute))
	assert.Equal(t, "1h", shortDuration(time.Hour))
	assert.Equal(t, "1h30m", shortDuration(90*time.Minute))
	assert.Equal(t, "45s", shortDuration(45*time.Second))
}

func TestAlertTruncate(t *testing.T) {
	assert.Equal(t, "short", alertTruncate("short", 10))
	assert.Equal(t, "äöü…", alertTruncate("äöüßxyz", 4))
}

func TestFormatAlertEntry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	due := now.Add(2 * time.Hour)
	e := sys.AlertEntry{Index: 2, Alert: sys.Alert{Label: "stretch", DueAt: due, Recurrence: "2h"}}

	got := formatAlertEntry(e, now)
	assert.Contains(t, got, "**3.** stretch")
	assert.Contains(t, got, fmt.Sprintf("<t:%d:F>", due.Unix()))
	assert.Contains(t, got, "in 2 hours")
	assert.Contains(t, got, "Repeats every `2h`")
}

func TestListContainerCapsButtonRows(t *testing.T) {
	book, err := sys.NewAlertBook(discardStore{}, sys.DefaultAlertLimits(), nil)
	require.NoError(t, err)
	c := &alertCommands{book: book}

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var entries []sys.AlertEntry
	for i := 0; i < 10; i++ {
		entries = append(entries, sys.AlertEntry{
			Index: i,
			Alert: sys.Alert{ID: strconv.Itoa(i), Label: "a", DueAt: now.Add(time.Duration(i+1) * time.Hour)},
		})
	}

	container := c.listContainer("", entries, now)
	require.Len(t, container.Components, 1+alertListButtonRows*2+1)

	row, ok := container.Components[2].(discord.ActionRowComponent)
	require.True(t, ok)
	require.Len(t, row.Components, 2)
	cancel, ok := row.Components[0].(discord.ButtonComponent)
	require.True(t, ok)
	assert.Equal(t, alertCancelPrefix+"0", cancel.CustomID)

	tail, ok := container.Components[len(container.Components)-1].(discord.TextDisplayComponent)
	require.True(t, ok)
	assert.Contains(t, tail.Content, "and 2 more")
}
