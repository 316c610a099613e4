package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, time.November, 3, 18, 0, 0, 0, time.UTC)

func at(seconds int) time.Time {
	return base.Add(time.Duration(seconds) * time.Second)
}

// byLabel mimics the store's fetch order: activity label ascending, then id.
func row(id int64, activity string, start, end time.Time) Session {
	return Session{ID: id, UserID: "user-1", Activity: activity, Start: start, End: end}
}

func TestReconcileMergesDuplicateAnnouncements(t *testing.T) {
	raw := []Session{
		row(1, "Mining", at(0), at(10)),
		row(2, "Mining", at(10), at(20)),
		row(3, "Building", at(20), time.Time{}),
	}

	clean := Reconcile(raw)

	require.Len(t, clean, 2)
	require.Equal(t, "Mining", clean[0].Activity)
	require.Equal(t, at(0), clean[0].Start)
	require.Equal(t, at(20), clean[0].End)
	require.Equal(t, "Building", clean[1].Activity)
	require.True(t, clean[1].Open())
}

func TestReconcileDropsNoneGaps(t *testing.T) {
	// Label order puts "Fishing" before the "None" rows.
	raw := []Session{
		row(2, "Fishing", at(5), at(15)),
		row(1, ActivityNone, at(0), at(5)),
		row(3, ActivityNone, at(15), time.Time{}),
	}

	clean := Reconcile(raw)

	require.Len(t, clean, 1)
	require.Equal(t, "Fishing", clean[0].Activity)
	require.Equal(t, at(5), clean[0].Start)
	require.Equal(t, at(15), clean[0].End)
}

func TestReconcileKeepsIsolatedLeadingNone(t *testing.T) {
	raw := []Session{
		row(1, ActivityNone, at(0), time.Time{}),
	}

	clean := Reconcile(raw)

	require.Len(t, clean, 1)
	require.Equal(t, ActivityNone, clean[0].Activity)
}

func TestReconcileNeverEmitsNoneAfterFirstEntry(t *testing.T) {
	raw := []Session{
		row(1, "Building", at(0), at(10)),
		row(2, ActivityNone, at(10), at(20)),
		row(3, "Singing", at(20), at(30)),
		row(4, ActivityNone, at(30), time.Time{}),
	}

	clean := Reconcile(raw)

	for i, s := range clean {
		if i == 0 {
			continue
		}
		require.NotEqual(t, ActivityNone, s.Activity)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	raw := []Session{
		row(1, "Fishing", at(100), at(200)),
		row(2, "Fishing", at(200), at(250)),
		row(3, "Mining", at(250), at(300)),
		row(4, ActivityNone, at(300), time.Time{}),
	}

	once := Reconcile(raw)
	twice := Reconcile(once)
	require.Equal(t, once, twice)
}

// Raw rows arrive grouped by label, not by time, so same-label sessions from
// widely different times merge even when another activity ran in between.
// That is the read model's documented behaviour, not a bug to fix here.
func TestReconcileMergesSameLabelAcrossInterveningActivity(t *testing.T) {
	raw := []Session{
		row(2, "Building", at(600), at(1200)),
		row(1, "Mining", at(0), at(600)),
		row(3, "Mining", at(1200), at(1800)),
	}

	clean := Reconcile(raw)

	require.Len(t, clean, 2)
	require.Equal(t, "Building", clean[0].Activity)
	require.Equal(t, "Mining", clean[1].Activity)
	require.Equal(t, at(0), clean[1].Start)
	require.Equal(t, at(1800), clean[1].End)
}

func TestReconcileComparesAtWholeSecondPrecision(t *testing.T) {
	early := at(10)
	laterSameSecond := at(10).Add(600 * time.Millisecond)

	raw := []Session{
		row(1, "Mining", laterSameSecond, at(20)),
		row(2, "Mining", early, at(30)),
	}

	clean := Reconcile(raw)

	require.Len(t, clean, 1)
	// Same second after truncation: the first-seen start wins.
	require.Equal(t, laterSameSecond, clean[0].Start)
	require.Equal(t, at(30), clean[0].End)
}

func TestReconcileMissingTimestampsAreNoInformation(t *testing.T) {
	raw := []Session{
		row(1, "Mining", time.Time{}, time.Time{}),
		row(2, "Mining", at(0), at(60)),
		row(3, "Mining", at(60), time.Time{}),
	}

	clean := Reconcile(raw)

	require.Len(t, clean, 1)
	require.Equal(t, at(0), clean[0].Start)
	require.Equal(t, at(60), clean[0].End)
}

func TestSessionDurationExcludesMalformedRows(t *testing.T) {
	_, ok := Session{Activity: "Mining", Start: at(0)}.Duration()
	require.False(t, ok)

	_, ok = Session{Activity: "Mining", End: at(10)}.Duration()
	require.False(t, ok)

	d, ok := Session{Activity: "Mining", Start: at(0), End: at(90)}.Duration()
	require.True(t, ok)
	require.Equal(t, 90*time.Second, d)
}
