package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"exit_poll/internal/models"
	"exit_poll/internal/services"
	"exit_poll/internal/testutil"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type env struct {
	db    *gorm.DB
	svc   *services.Services
	store *testutil.FakeStore
	clock *clock
}

func newEnv(t *testing.T, opts ...services.Option) *env {
	t.Helper()
	e := &env{db: testutil.NewDB(t), store: testutil.NewFakeStore(), clock: newClock()}
	opts = append([]services.Option{services.WithClock(e.clock.Now)}, opts...)
	e.svc = services.New(e.db, e.store, opts...)
	return e
}

func (e *env) image(t *testing.T, name string) *services.AssetRef {
	return &services.AssetRef{
		LocalPath:    testutil.TempAsset(t, name),
		OriginalName: name,
		ContentType:  "image/png",
	}
}

// seedCandidate creates city, zone and candidate in one go.
func (e *env) seedCandidate(t *testing.T, city, zone, name string) (*models.Zone, *models.Candidate) {
	t.Helper()
	ctx := context.Background()

	var cityID uint
	cities, err := e.svc.ListCities(ctx)
	require.NoError(t, err)
	for _, c := range cities {
		if c.Name == city {
			cityID = c.ID
		}
	}
	if cityID == 0 {
		c, err := e.svc.CreateCity(ctx, city)
		require.NoError(t, err)
		cityID = c.ID
	}

	var z *models.Zone
	zones, err := e.svc.ListZonesByCity(ctx, cityID)
	require.NoError(t, err)
	for _, v := range zones {
		if v.Name == zone {
			z = &models.Zone{ID: v.ID, CityID: v.CityID, Name: v.Name}
		}
	}
	if z == nil {
		created, err := e.svc.AddZones(ctx, cityID, []string{zone})
		require.NoError(t, err)
		z = &created[0]
	}

	cand, err := e.svc.RegisterCandidate(ctx, services.CandidateCreateRequest{
		ZoneID:    z.ID,
		Name:      name,
		PartyName: "Party " + name,
		Photo:     e.image(t, name+"-photo.png"),
		Logo:      e.image(t, name+"-logo.png"),
	})
	require.NoError(t, err)
	return z, cand
}
