package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// MaxScheduleEntries caps a weekly schedule at one window per weekday.
const MaxScheduleEntries = 7

var (
	ErrDuplicateWeekday      = errors.New("weekday already has an availability window")
	ErrScheduleFull          = errors.New("schedule already has an entry for every weekday")
	ErrInvalidTimeRange      = errors.New("start time must be before end time")
	ErrInvalidWeekday        = errors.New("unknown weekday")
	ErrInvalidClockTime      = errors.New("clock time must be formatted as HH:MM")
	ErrScheduleEntryNotFound = errors.New("schedule entry not found")
	ErrEmptySchedule         = errors.New("at least one availability window is required")
)

// WeekOrder lists weekdays the way the schedule editor presents them.
var WeekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// ParseWeekday accepts full or three-letter English names in any case.
func ParseWeekday(raw string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for _, d := range WeekOrder {
		full := strings.ToLower(d.String())
		if name == full || (len(name) == 3 && strings.HasPrefix(full, name)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, raw)
}

// WeekdayName is the lowercase wire name of a weekday.
func WeekdayName(d time.Weekday) string {
	return strings.ToLower(d.String())
}

func validWeekday(d time.Weekday) bool {
	return d >= time.Sunday && d <= time.Saturday
}

// ClockTime is a wall-clock time of day with minute resolution, stored as minutes since midnight.
type ClockTime int

// ParseClockTime parses "HH:MM" (a trailing ":SS" is accepted and ignored).
func ParseClockTime(raw string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, raw)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, raw)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, raw)
	}
	return ClockTime(hours*60 + minutes), nil
}

// MustClockTime is ParseClockTime for literals.
func MustClockTime(raw string) ClockTime {
	c, err := ParseClockTime(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(text []byte) error {
	parsed, err := ParseClockTime(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ScheduleEntry is one weekly availability window.
type ScheduleEntry struct {
	ID      string       `json:"id"`
	Weekday time.Weekday `json:"weekday"`
	Start   ClockTime    `json:"start"`
	End     ClockTime    `json:"end"`
}

// SchedulePatch describes an edit to an existing entry; nil fields are left untouched.
type SchedulePatch struct {
	Weekday *time.Weekday
	Start   *ClockTime
	End     *ClockTime
}

// ScheduleSet holds at most one window per weekday. The zero value is an empty set.
// Entries are addressed by their stable id, never by position.
type ScheduleSet struct {
	entries []ScheduleEntry
	newID   func() string
}

// WithIDSource overrides id generation, mainly for deterministic tests.
func (s *ScheduleSet) WithIDSource(fn func() string) {
	s.newID = fn
}

// Add appends a window for a weekday that has none yet.
func (s *ScheduleSet) Add(weekday time.Weekday, start, end ClockTime) (ScheduleEntry, error) {
	if !validWeekday(weekday) {
		return ScheduleEntry{}, ErrInvalidWeekday
	}
	if len(s.entries) >= MaxScheduleEntries {
		return ScheduleEntry{}, ErrScheduleFull
	}
	if s.indexOfWeekday(weekday) >= 0 {
		return ScheduleEntry{}, fmt.Errorf("%w: %s", ErrDuplicateWeekday, WeekdayName(weekday))
	}
	if start >= end {
		return ScheduleEntry{}, ErrInvalidTimeRange
	}
	entry := ScheduleEntry{ID: s.generateID(), Weekday: weekday, Start: start, End: end}
	s.entries = append(s.entries, entry)
	return entry, nil
}

// Update applies a patch to the entry with the given id. Moving an entry onto a weekday
// held by another entry is rejected; keeping its own weekday is not a collision.
func (s *ScheduleSet) Update(id string, patch SchedulePatch) (ScheduleEntry, error) {
	idx := s.indexOfID(id)
	if idx < 0 {
		return ScheduleEntry{}, ErrScheduleEntryNotFound
	}
	candidate := s.entries[idx]
	if patch.Weekday != nil {
		if !validWeekday(*patch.Weekday) {
			return ScheduleEntry{}, ErrInvalidWeekday
		}
		if other := s.indexOfWeekday(*patch.Weekday); other >= 0 && other != idx {
			return ScheduleEntry{}, fmt.Errorf("%w: %s", ErrDuplicateWeekday, WeekdayName(*patch.Weekday))
		}
		candidate.Weekday = *patch.Weekday
	}
	if patch.Start != nil {
		candidate.Start = *patch.Start
	}
	if patch.End != nil {
		candidate.End = *patch.End
	}
	if candidate.Start >= candidate.End {
		return ScheduleEntry{}, ErrInvalidTimeRange
	}
	s.entries[idx] = candidate
	return candidate, nil
}

// Remove deletes the entry if present and reports whether it existed.
func (s *ScheduleSet) Remove(id string) bool {
	idx := s.indexOfID(id)
	if idx < 0 {
		return false
	}
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	return true
}

// NextSuggestedWeekday returns the first free weekday in Monday..Sunday order,
// or Monday when every day is taken.
func (s *ScheduleSet) NextSuggestedWeekday() time.Weekday {
	for _, d := range WeekOrder {
		if s.indexOfWeekday(d) < 0 {
			return d
		}
	}
	return time.Monday
}

// Entry looks up one entry by id.
func (s *ScheduleSet) Entry(id string) (ScheduleEntry, bool) {
	idx := s.indexOfID(id)
	if idx < 0 {
		return ScheduleEntry{}, false
	}
	return s.entries[idx], true
}

// Entries returns a copy of the entries in insertion order.
func (s *ScheduleSet) Entries() []ScheduleEntry {
	return append([]ScheduleEntry(nil), s.entries...)
}

func (s *ScheduleSet) Len() int { return len(s.entries) }

// Validate enforces the submission rule that availability is mandatory.
func (s *ScheduleSet) Validate() error {
	if len(s.entries) == 0 {
		return ErrEmptySchedule
	}
	return nil
}

// Clone returns an independent copy.
func (s *ScheduleSet) Clone() ScheduleSet {
	return ScheduleSet{entries: s.Entries(), newID: s.newID}
}

func (s ScheduleSet) MarshalJSON() ([]byte, error) {
	entries := s.entries
	if entries == nil {
		entries = []ScheduleEntry{}
	}
	return json.Marshal(entries)
}

// UnmarshalJSON rebuilds the set, rejecting payloads that break its invariants.
func (s *ScheduleSet) UnmarshalJSON(data []byte) error {
	var raw []ScheduleEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rebuilt := ScheduleSet{newID: s.newID}
	for _, e := range raw {
		if _, err := rebuilt.Add(e.Weekday, e.Start, e.End); err != nil {
			return fmt.Errorf("schedule entry %s: %w", e.ID, err)
		}
		if e.ID != "" {
			rebuilt.entries[len(rebuilt.entries)-1].ID = e.ID
		}
	}
	*s = rebuilt
	return nil
}

func (s *ScheduleSet) indexOfID(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *ScheduleSet) indexOfWeekday(d time.Weekday) int {
	for i, e := range s.entries {
		if e.Weekday == d {
			return i
		}
	}
	return -1
}

func (s *ScheduleSet) generateID() string {
	if s.newID != nil {
		return s.newID()
	}
	return uuid.NewString()
}
