package domain

import "time"

// Reconcile merges a user's raw session rows into a clean timeline.
//
// Input rows must be ordered by activity label so same-label fragments are
// adjacent; duplicate announcements then collapse into one entry. Same-label
// rows merge by widening the interval (earliest start, latest end). Rows
// labeled ActivityNone are dropped unless they are the very first entry.
//
// Timestamps are compared at whole-second precision and a missing timestamp
// is treated as "no information": it never overwrites a populated one. The
// function never fails on malformed rows.
func Reconcile(raw []Session) []Session {
	clean := make([]Session, 0, len(raw))
	for _, r := range raw {
		if len(clean) == 0 {
			clean = append(clean, r)
			continue
		}

		last := &clean[len(clean)-1]
		switch {
		case r.Activity == last.Activity:
			mergeInto(last, r)
		case r.Activity != ActivityNone:
			clean = append(clean, r)
		default:
			// Stray "None" gap between real activities: drop.
		}
	}
	return clean
}

func mergeInto(dst *Session, r Session) {
	if !r.Start.IsZero() && (dst.Start.IsZero() || beforeSec(r.Start, dst.Start)) {
		dst.Start = r.Start
	}
	if !r.End.IsZero() && (dst.End.IsZero() || beforeSec(dst.End, r.End)) {
		dst.End = r.End
	}
}

// beforeSec compares two timestamps truncated to whole seconds. Sub-second
// ordering is deliberately not preserved.
func beforeSec(a, b time.Time) bool {
	return a.Truncate(time.Second).Before(b.Truncate(time.Second))
}
