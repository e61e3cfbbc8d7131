// Package tally holds the read-side arithmetic of the poll: zone shares,
// hourly vote buckets and the dashboard activity feed. Nothing here touches
// the database.
package tally

import (
	"math"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
)

// Entry is one candidate's counter as read from the store, in insertion
// order.
type Entry struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	PartyName    string `json:"partyName"`
	PhotoURL     string `json:"photoUrl"`
	PartyLogoURL string `json:"partyLogoUrl"`
	Votes        int64  `json:"votes"`
}

type Share struct {
	Entry
	Percentage float64 `json:"percentage"`
}

type ZoneResult struct {
	TotalVotes int64   `json:"totalVotes"`
	Candidates []Share `json:"candidates"`
}

// Round2 rounds half away from zero to two decimals.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Shares orders entries by votes descending, keeping insertion order among
// ties, and computes each entry's share of the zone total. A zone with no
// votes yields 0 for every candidate.
func Shares(entries []Entry) ZoneResult {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Votes > sorted[j].Votes
	})

	var total int64
	for _, e := range sorted {
		total += e.Votes
	}

	res := ZoneResult{TotalVotes: total, Candidates: make([]Share, 0, len(sorted))}
	for _, e := range sorted {
		var pct float64
		if total > 0 {
			pct = Round2(float64(e.Votes) / float64(total) * 100)
		}
		res.Candidates = append(res.Candidates, Share{Entry: e, Percentage: pct})
	}
	return res
}

type HourBucket struct {
	Hour  time.Time `json:"hour"`
	Count int64     `json:"count"`
}

// Hourly counts timestamps into UTC hour buckets. Feed it timestamps in
// descending order; Add returns false once a timestamp falls outside the
// newest Limit buckets, at which point the caller can stop reading.
type Hourly struct {
	Limit   int
	buckets []HourBucket
}

func NewHourly(limit int) *Hourly {
	return &Hourly{Limit: limit}
}

func (h *Hourly) Add(t time.Time) bool {
	hour := t.UTC().Truncate(time.Hour)
	if n := len(h.buckets); n > 0 {
		last := &h.buckets[n-1]
		if last.Hour.Equal(hour) {
			last.Count++
			return true
		}
		if hour.After(last.Hour) {
			// out of order input, find the bucket the slow way
			return h.insert(hour)
		}
	}
	if len(h.buckets) >= h.Limit {
		return false
	}
	h.buckets = append(h.buckets, HourBucket{Hour: hour, Count: 1})
	return true
}

func (h *Hourly) insert(hour time.Time) bool {
	for i := range h.buckets {
		if h.buckets[i].Hour.Equal(hour) {
			h.buckets[i].Count++
			return true
		}
	}
	h.buckets = append(h.buckets, HourBucket{Hour: hour, Count: 1})
	sort.Slice(h.buckets, func(i, j int) bool {
		return h.buckets[i].Hour.After(h.buckets[j].Hour)
	})
	if len(h.buckets) > h.Limit {
		h.buckets = h.buckets[:h.Limit]
	}
	return true
}

// Buckets returns the counted hours, most recent first.
func (h *Hourly) Buckets() []HourBucket {
	out := make([]HourBucket, len(h.buckets))
	copy(out, h.buckets)
	return out
}

// Activity is one line of the dashboard feed.
type Activity struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	Time      string    `json:"time"`
}

// MergeRecent merges several recent-first feeds into one, newest first,
// truncated to limit. The Time text is computed against now on every call.
func MergeRecent(now time.Time, limit int, feeds ...[]Activity) []Activity {
	var all []Activity
	for _, f := range feeds {
		all = append(all, f...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	for i := range all {
		all[i].Time = Age(all[i].CreatedAt, now)
	}
	return all
}

// Age renders then relative to now, e.g. "2 hours ago".
func Age(then, now time.Time) string {
	if then.After(now) {
		then = now
	}
	return humanize.RelTime(then, now, "ago", "from now")
}
