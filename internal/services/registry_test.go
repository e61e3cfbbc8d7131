package services_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exit_poll/internal/services"
)

func TestCreateCityIsCaseInsensitive(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.CreateCity(ctx, "Pune")
	require.NoError(t, err)

	_, err = e.svc.CreateCity(ctx, "pune")
	assert.True(t, services.IsKind(err, services.KindConflict))

	_, err = e.svc.CreateCity(ctx, "  PUNE ")
	assert.True(t, services.IsKind(err, services.KindConflict))
}

func TestCreateCityRejectsBlank(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.CreateCity(context.Background(), "   ")
	assert.Equal(t, services.KindInvalidArgument, services.KindOf(err))
}

func TestListCitiesSortedByName(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for _, n := range []string{"Nagpur", "Delhi", "Mumbai"} {
		_, err := e.svc.CreateCity(ctx, n)
		require.NoError(t, err)
	}
	cities, err := e.svc.ListCities(ctx)
	require.NoError(t, err)
	require.Len(t, cities, 3)
	assert.Equal(t, "Delhi", cities[0].Name)
	assert.Equal(t, "Mumbai", cities[1].Name)
	assert.Equal(t, "Nagpur", cities[2].Name)
}

func TestDeleteCity(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	city, err := e.svc.CreateCity(ctx, "Pune")
	require.NoError(t, err)
	_, err = e.svc.AddZones(ctx, city.ID, []string{"Kothrud"})
	require.NoError(t, err)

	require.NoError(t, e.svc.DeleteCity(ctx, city.ID))
	assert.True(t, services.IsKind(e.svc.DeleteCity(ctx, city.ID), services.KindNotFound))

	// no cascade: the zone is still counted
	stats, err := e.svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.TotalCities)
	assert.EqualValues(t, 1, stats.TotalZones)

	// the name is free again
	_, err = e.svc.CreateCity(ctx, "pune")
	assert.NoError(t, err)
}

func TestZoneNamesAreScopedPerCity(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a, err := e.svc.CreateCity(ctx, "A")
	require.NoError(t, err)
	b, err := e.svc.CreateCity(ctx, "B")
	require.NoError(t, err)

	_, err = e.svc.AddZones(ctx, a.ID, []string{"Central"})
	require.NoError(t, err)
	_, err = e.svc.AddZones(ctx, b.ID, []string{"Central"})
	require.NoError(t, err)

	_, err = e.svc.AddZones(ctx, a.ID, []string{"Central"})
	require.True(t, services.IsKind(err, services.KindConflict))

	var se *services.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"Central"}, se.Failed)
}

func TestAddZonesIsNotAllOrNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	city, err := e.svc.CreateCity(ctx, "Mumbai")
	require.NoError(t, err)
	_, err = e.svc.AddZones(ctx, city.ID, []string{"Andheri"})
	require.NoError(t, err)

	created, err := e.svc.AddZones(ctx, city.ID, []string{"Bandra", "Andheri", " ", "Colaba"})
	require.Error(t, err)
	assert.True(t, services.IsKind(err, services.KindConflict))
	require.Len(t, created, 2)
	assert.Equal(t, "Bandra", created[0].Name)
	assert.Equal(t, "Colaba", created[1].Name)

	var se *services.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"Andheri", " "}, se.Failed)

	zones, err := e.svc.ListZonesByCity(ctx, city.ID)
	require.NoError(t, err)
	require.Len(t, zones, 3)
	for _, z := range zones {
		assert.Equal(t, "Mumbai", z.CityName)
	}
}

func TestAddZonesValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.AddZones(ctx, 99, []string{"X"})
	assert.True(t, services.IsKind(err, services.KindNotFound))

	city, err := e.svc.CreateCity(ctx, "Goa")
	require.NoError(t, err)
	_, err = e.svc.AddZones(ctx, city.ID, nil)
	assert.True(t, services.IsKind(err, services.KindInvalidArgument))

	_, err = e.svc.ListZonesByCity(ctx, 99)
	assert.True(t, services.IsKind(err, services.KindNotFound))
}

func TestUpdateAndDeleteZone(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	city, err := e.svc.CreateCity(ctx, "Pune")
	require.NoError(t, err)
	zones, err := e.svc.AddZones(ctx, city.ID, []string{"North", "South"})
	require.NoError(t, err)

	z, err := e.svc.UpdateZone(ctx, zones[0].ID, "East")
	require.NoError(t, err)
	assert.Equal(t, "East", z.Name)

	_, err = e.svc.UpdateZone(ctx, zones[0].ID, "South")
	assert.True(t, services.IsKind(err, services.KindConflict))

	_, err = e.svc.UpdateZone(ctx, zones[0].ID, "")
	assert.True(t, services.IsKind(err, services.KindInvalidArgument))

	_, err = e.svc.UpdateZone(ctx, 999, "West")
	assert.True(t, services.IsKind(err, services.KindNotFound))

	require.NoError(t, e.svc.DeleteZone(ctx, zones[1].ID))
	assert.True(t, services.IsKind(e.svc.DeleteZone(ctx, zones[1].ID), services.KindNotFound))
}

func TestZoneBoundaryAndLocate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	city, err := e.svc.CreateCity(ctx, "Grid")
	require.NoError(t, err)
	zones, err := e.svc.AddZones(ctx, city.ID, []string{"West", "East"})
	require.NoError(t, err)

	west := `{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,10],[0,0]]]}`
	east := `{"type":"Polygon","coordinates":[[[10,0],[20,0],[20,10],[10,10],[10,0]]]}`
	require.NoError(t, e.svc.SetZoneBoundary(ctx, zones[0].ID, west))
	require.NoError(t, e.svc.SetZoneBoundary(ctx, zones[1].ID, east))

	got, err := e.svc.LocateZone(ctx, 5, 15)
	require.NoError(t, err)
	assert.Equal(t, zones[1].ID, got.ID)
	assert.Equal(t, "Grid", got.CityName)

	got, err = e.svc.LocateZone(ctx, 5, 5)
	require.NoError(t, err)
	assert.Equal(t, zones[0].ID, got.ID)

	_, err = e.svc.LocateZone(ctx, 50, 50)
	assert.True(t, services.IsKind(err, services.KindNotFound))

	_, err = e.svc.LocateZone(ctx, 95, 0)
	assert.True(t, services.IsKind(err, services.KindInvalidArgument))
	_, err = e.svc.LocateZone(ctx, math.NaN(), 5)
	assert.True(t, services.IsKind(err, services.KindInvalidArgument))
	_, err = e.svc.LocateZone(ctx, 5, math.NaN())
	assert.True(t, services.IsKind(err, services.KindInvalidArgument))

	b, err := e.svc.ZoneBoundary(ctx, zones[0].ID)
	require.NoError(t, err)
	assert.Contains(t, b, "Polygon")

	err = e.svc.SetZoneBoundary(ctx, zones[0].ID, `{"type":"Point","coordinates":[1,1]}`)
	assert.True(t, services.IsKind(err, services.KindInvalidArgument))

	err = e.svc.SetZoneBoundary(ctx, 999, west)
	assert.True(t, services.IsKind(err, services.KindNotFound))

	// clearing removes the zone from lookups
	require.NoError(t, e.svc.SetZoneBoundary(ctx, zones[0].ID, ""))
	_, err = e.svc.LocateZone(ctx, 5, 5)
	assert.True(t, services.IsKind(err, services.KindNotFound))
}
