package services

import (
	"context"
	"fmt"
	"time"

	"exit_poll/internal/models"
	"exit_poll/internal/tally"
)

const (
	// ActivityBuckets is how many hourly buckets VotingActivity returns.
	ActivityBuckets = 24
	// RecentActivityLimit caps each registry feed and the merged feed.
	RecentActivityLimit = 5
)

type ZoneTally struct {
	ZoneID   uint   `json:"zoneId"`
	ZoneName string `json:"zoneName"`
	tally.ZoneResult
}

type DashboardStats struct {
	TotalCities     int64            `json:"totalCities"`
	TotalZones      int64            `json:"totalZones"`
	TotalCandidates int64            `json:"totalCandidates"`
	TotalVotes      int64            `json:"totalVotes"`
	RecentActivity  []tally.Activity `json:"recentActivity"`
}

// ZoneTally reads every candidate counter of the zone in one query and
// derives the shares from that snapshot.
func (s *Services) ZoneTally(ctx context.Context, zoneID uint) (*ZoneTally, error) {
	zone, err := s.getZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	var cands []models.Candidate
	if err := s.db.WithContext(ctx).Where("zone_id = ?", zoneID).Order("id asc").Find(&cands).Error; err != nil {
		return nil, storeError(err, "zone tally")
	}

	entries := make([]tally.Entry, len(cands))
	for i, c := range cands {
		entries[i] = tally.Entry{
			ID:           c.ID,
			Name:         c.Name,
			PartyName:    c.PartyName,
			PhotoURL:     c.PhotoURL,
			PartyLogoURL: c.PartyLogoURL,
			Votes:        c.TotalVotes,
		}
	}
	return &ZoneTally{
		ZoneID:     zone.ID,
		ZoneName:   zone.Name,
		ZoneResult: tally.Shares(entries),
	}, nil
}

// VotingActivity counts ledger entries per UTC hour for the most recent
// hours that saw votes, newest first.
func (s *Services) VotingActivity(ctx context.Context) ([]tally.HourBucket, error) {
	rows, err := s.db.WithContext(ctx).
		Model(&models.Vote{}).
		Select("voted_at").
		Order("voted_at desc").
		Rows()
	if err != nil {
		return nil, storeError(err, "voting activity")
	}
	defer rows.Close()

	h := tally.NewHourly(ActivityBuckets)
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return nil, storeError(err, "voting activity")
		}
		if !h.Add(at) {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err, "voting activity")
	}
	return h.Buckets(), nil
}

type recentRow struct {
	Name      string
	Parent    string
	CreatedAt time.Time
}

func (s *Services) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	var stats DashboardStats
	counts := []struct {
		model any
		dst   *int64
	}{
		{&models.City{}, &stats.TotalCities},
		{&models.Zone{}, &stats.TotalZones},
		{&models.Candidate{}, &stats.TotalCandidates},
		{&models.Vote{}, &stats.TotalVotes},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dst).Error; err != nil {
			return nil, storeError(err, "dashboard counts")
		}
	}

	var cities, zones, cands []recentRow
	if err := db.Table("cities").
		Select("name, created_at").
		Order("created_at desc").Limit(RecentActivityLimit).
		Scan(&cities).Error; err != nil {
		return nil, storeError(err, "recent cities")
	}
	if err := db.Table("zones").
		Select("zones.name, COALESCE(cities.name, '') AS parent, zones.created_at").
		Joins("LEFT JOIN cities ON cities.id = zones.city_id").
		Order("zones.created_at desc").Limit(RecentActivityLimit).
		Scan(&zones).Error; err != nil {
		return nil, storeError(err, "recent zones")
	}
	if err := db.Table("candidates").
		Select("candidates.name, COALESCE(zones.name, '') AS parent, candidates.created_at").
		Joins("LEFT JOIN zones ON zones.id = candidates.zone_id").
		Order("candidates.created_at desc").Limit(RecentActivityLimit).
		Scan(&cands).Error; err != nil {
		return nil, storeError(err, "recent candidates")
	}

	stats.RecentActivity = tally.MergeRecent(s.now(), RecentActivityLimit,
		activities("city", cities),
		activities("zone", zones),
		activities("candidate", cands),
	)
	return &stats, nil
}

func activities(kind string, rows []recentRow) []tally.Activity {
	out := make([]tally.Activity, 0, len(rows))
	for _, r := range rows {
		var msg string
		switch {
		case kind == "city":
			msg = fmt.Sprintf("New city added: %s", r.Name)
		case r.Parent == "":
			msg = fmt.Sprintf("New %s added: %s", kind, r.Name)
		default:
			msg = fmt.Sprintf("New %s added: %s in %s", kind, r.Name, r.Parent)
		}
		out = append(out, tally.Activity{Type: kind, Message: msg, CreatedAt: r.CreatedAt})
	}
	return out
}
