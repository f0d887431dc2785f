package sys

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// naiveISOLayout reads timestamps written without an offset. They are
// taken to be UTC.
const naiveISOLayout = "2006-01-02T15:04:05"

// alertRecord is the on-disk shape of one alert.
type alertRecord struct {
	ID         string  `json:"id,omitempty"`
	Label      string  `json:"label"`
	DueAt      string  `json:"due_at"`
	Recurrence *string `json:"recurrence"`
	Failures   int     `json:"failures,omitempty"`
}

// AlertFile persists the whole alert map as one JSON document.
type AlertFile struct {
	Path string
}

func NewAlertFile(path string) *AlertFile {
	return &AlertFile{Path: path}
}

// Load reads the alert map. A missing file yields an empty map and no
// error. Undecodable JSON yields an empty map and an error wrapping
// ErrAlertFileCorrupt; the bad file is moved aside so a later Save does
// not overwrite it.
func (f *AlertFile) Load() (map[string][]*Alert, error) {
	alerts := make(map[string][]*Alert)

	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		LogAlert(MsgAlertFileMissing, f.Path)
		return alerts, nil
	}
	if err != nil {
		return alerts, fmt.Errorf("read %s: %w", f.Path, err)
	}

	var raw map[string][]alertRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		aside := f.Path + ".corrupt"
		if renameErr := os.Rename(f.Path, aside); renameErr == nil {
			LogAlert(MsgAlertFileQuarantined, aside)
		}
		return alerts, fmt.Errorf("%w: %v", ErrAlertFileCorrupt, err)
	}

	for owner, records := range raw {
		for _, rec := range records {
			a, err := rec.toAlert(owner)
			if err != nil {
				LogWarn(MsgAlertFileBadRecord, rec.Label, owner, err)
				continue
			}
			alerts[owner] = append(alerts[owner], a)
		}
	}

	return alerts, nil
}

// Save overwrites the file with the given map. The write goes through a
// temp file and a rename so a crash mid-write leaves the old file intact.
func (f *AlertFile) Save(alerts map[string][]*Alert) error {
	out := make(map[string][]alertRecord, len(alerts))
	for owner, list := range alerts {
		if len(list) == 0 {
			continue
		}
		records := make([]alertRecord, 0, len(list))
		for _, a := range list {
			records = append(records, fromAlert(a))
		}
		out[owner] = records
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode alerts: %w", err)
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write alerts: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.Path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", f.Path, err)
	}
	return nil
}

func (r alertRecord) toAlert(owner string) (*Alert, error) {
	due, err := parseStoredTime(r.DueAt)
	if err != nil {
		return nil, err
	}
	a := &Alert{
		ID:       r.ID,
		Owner:    owner,
		Label:    r.Label,
		DueAt:    due,
		Failures: r.Failures,
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if r.Recurrence != nil {
		a.Recurrence = *r.Recurrence
	}
	return a, nil
}

func fromAlert(a *Alert) alertRecord {
	rec := alertRecord{
		ID:       a.ID,
		Label:    a.Label,
		DueAt:    a.DueAt.UTC().Format(time.RFC3339),
		Failures: a.Failures,
	}
	if a.Recurrence != "" {
		r := a.Recurrence
		rec.Recurrence = &r
	}
	return rec
}

func parseStoredTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Truncate(time.Second), nil
	}
	t, err := time.ParseInLocation(naiveISOLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad due_at %q", s)
	}
	return t.Truncate(time.Second), nil
}
