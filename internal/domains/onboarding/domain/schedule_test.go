package domain

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("entry-%d", n)
	}
}

func TestScheduleSet_MondayTuesdayCollision(t *testing.T) {
	var set ScheduleSet
	set.WithIDSource(sequentialIDs())

	mon, err := set.Add(time.Monday, MustClockTime("09:00"), MustClockTime("17:00"))
	require.NoError(t, err)
	tue, err := set.Add(time.Tuesday, MustClockTime("10:00"), MustClockTime("14:00"))
	require.NoError(t, err)

	monday := time.Monday
	_, err = set.Update(tue.ID, SchedulePatch{Weekday: &monday})
	require.ErrorIs(t, err, ErrDuplicateWeekday)

	got, ok := set.Entry(tue.ID)
	require.True(t, ok)
	require.Equal(t, time.Tuesday, got.Weekday)
	got, ok = set.Entry(mon.ID)
	require.True(t, ok)
	require.Equal(t, time.Monday, got.Weekday)
}

func TestScheduleSet_RejectsEighthEntry(t *testing.T) {
	var set ScheduleSet
	for _, d := range WeekOrder {
		_, err := set.Add(d, MustClockTime("08:00"), MustClockTime("12:00"))
		require.NoError(t, err)
	}
	require.Equal(t, MaxScheduleEntries, set.Len())

	_, err := set.Add(time.Monday, MustClockTime("13:00"), MustClockTime("15:00"))
	require.ErrorIs(t, err, ErrScheduleFull)
	require.Equal(t, MaxScheduleEntries, set.Len())
	require.Equal(t, time.Monday, set.NextSuggestedWeekday())
}

func TestScheduleSet_UpdateKeepingOwnWeekday(t *testing.T) {
	var set ScheduleSet
	entry, err := set.Add(time.Friday, MustClockTime("09:00"), MustClockTime("12:00"))
	require.NoError(t, err)

	friday := time.Friday
	end := MustClockTime("18:30")
	updated, err := set.Update(entry.ID, SchedulePatch{Weekday: &friday, End: &end})
	require.NoError(t, err)
	require.Equal(t, "18:30", updated.End.String())
	require.Equal(t, entry.ID, updated.ID)
}

func TestScheduleSet_RejectsInvertedRange(t *testing.T) {
	var set ScheduleSet
	_, err := set.Add(time.Monday, MustClockTime("17:00"), MustClockTime("09:00"))
	require.ErrorIs(t, err, ErrInvalidTimeRange)
	_, err = set.Add(time.Monday, MustClockTime("09:00"), MustClockTime("09:00"))
	require.ErrorIs(t, err, ErrInvalidTimeRange)

	entry, err := set.Add(time.Monday, MustClockTime("09:00"), MustClockTime("10:00"))
	require.NoError(t, err)
	start := MustClockTime("11:00")
	_, err = set.Update(entry.ID, SchedulePatch{Start: &start})
	require.ErrorIs(t, err, ErrInvalidTimeRange)

	got, _ := set.Entry(entry.ID)
	require.Equal(t, "09:00", got.Start.String())
}

func TestScheduleSet_SuggestionSkipsUsedDays(t *testing.T) {
	var set ScheduleSet
	require.Equal(t, time.Monday, set.NextSuggestedWeekday())

	_, err := set.Add(time.Monday, MustClockTime("09:00"), MustClockTime("10:00"))
	require.NoError(t, err)
	wed, err := set.Add(time.Tuesday, MustClockTime("09:00"), MustClockTime("10:00"))
	require.NoError(t, err)
	require.Equal(t, time.Wednesday, set.NextSuggestedWeekday())

	require.True(t, set.Remove(wed.ID))
	require.False(t, set.Remove(wed.ID))
	require.Equal(t, time.Tuesday, set.NextSuggestedWeekday())
}

func TestScheduleSet_ValidateRequiresEntries(t *testing.T) {
	var set ScheduleSet
	require.ErrorIs(t, set.Validate(), ErrEmptySchedule)
	_, err := set.Add(time.Sunday, MustClockTime("10:00"), MustClockTime("11:00"))
	require.NoError(t, err)
	require.NoError(t, set.Validate())
}

func TestScheduleSet_JSONKeepsIDsAndRejectsDuplicates(t *testing.T) {
	var set ScheduleSet
	set.WithIDSource(sequentialIDs())
	_, err := set.Add(time.Monday, MustClockTime("09:00"), MustClockTime("17:00"))
	require.NoError(t, err)

	raw, err := json.Marshal(set)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"start":"09:00"`)

	var decoded ScheduleSet
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, set.Entries(), decoded.Entries())

	dup := `[{"id":"a","weekday":1,"start":"09:00","end":"10:00"},{"id":"b","weekday":1,"start":"11:00","end":"12:00"}]`
	require.ErrorIs(t, json.Unmarshal([]byte(dup), &decoded), ErrDuplicateWeekday)
}

func TestScheduleSet_InvariantsHoldUnderRandomEdits(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var set ScheduleSet

	for i := 0; i < 2000; i++ {
		day := time.Weekday(rng.Intn(7))
		start := ClockTime(rng.Intn(24 * 60))
		end := ClockTime(rng.Intn(24 * 60))
		entries := set.Entries()

		switch rng.Intn(3) {
		case 0:
			_, _ = set.Add(day, start, end)
		case 1:
			if len(entries) > 0 {
				target := entries[rng.Intn(len(entries))]
				_, _ = set.Update(target.ID, SchedulePatch{Weekday: &day, Start: &start, End: &end})
			}
		case 2:
			if len(entries) > 0 {
				set.Remove(entries[rng.Intn(len(entries))].ID)
			}
		}

		seen := map[time.Weekday]bool{}
		require.LessOrEqual(t, set.Len(), MaxScheduleEntries)
		for _, e := range set.Entries() {
			require.False(t, seen[e.Weekday], "weekday %s appears twice", e.Weekday)
			seen[e.Weekday] = true
			require.Less(t, e.Start, e.End)
		}
	}
}

func TestParseWeekdayAndClock(t *testing.T) {
	d, err := ParseWeekday("Tue")
	require.NoError(t, err)
	require.Equal(t, time.Tuesday, d)
	d, err = ParseWeekday("sunday")
	require.NoError(t, err)
	require.Equal(t, time.Sunday, d)
	_, err = ParseWeekday("someday")
	require.ErrorIs(t, err, ErrInvalidWeekday)

	c, err := ParseClockTime("07:05:00")
	require.NoError(t, err)
	require.Equal(t, "07:05", c.String())
	for _, bad := range []string{"24:00", "7", "07:5", "aa:bb", "12:60"} {
		_, err := ParseClockTime(bad)
		require.ErrorIs(t, err, ErrInvalidClockTime, bad)
	}
}
