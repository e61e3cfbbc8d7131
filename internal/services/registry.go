package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"exit_poll/internal/geo"
	"exit_poll/internal/models"
)

// ZoneView is a zone together with the name of its city.
type ZoneView struct {
	ID        uint      `json:"id"`
	CityID    uint      `json:"cityId"`
	CityName  string    `json:"cityName"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Services) CreateCity(ctx context.Context, name string) (*models.City, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidArgument("city name is required")
	}
	key := models.CityNameKey(name)
	db := s.db.WithContext(ctx)

	// fast path only, the unique index on name_key decides races
	var count int64
	if err := db.Model(&models.City{}).Where("name_key = ?", key).Count(&count).Error; err != nil {
		return nil, storeError(err, "create city")
	}
	if count > 0 {
		return nil, conflict("city %q already exists", name)
	}

	city := models.City{Name: name, NameKey: key, CreatedAt: s.now()}
	if err := db.Create(&city).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, conflict("city %q already exists", name)
		}
		return nil, storeError(err, "create city")
	}
	logrus.WithFields(logrus.Fields{"city_id": city.ID, "name": city.Name}).Info("city created")
	return &city, nil
}

func (s *Services) ListCities(ctx context.Context) ([]models.City, error) {
	var cities []models.City
	if err := s.db.WithContext(ctx).Order("name asc").Find(&cities).Error; err != nil {
		return nil, storeError(err, "list cities")
	}
	return cities, nil
}

// DeleteCity removes the city only. Its zones stay behind and have to be
// removed by the admin.
func (s *Services) DeleteCity(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.City{}, id)
	if res.Error != nil {
		return storeError(res.Error, "delete city")
	}
	if res.RowsAffected == 0 {
		return notFound("city %d not found", id)
	}
	logrus.WithField("city_id", id).Info("city deleted")
	return nil
}

func (s *Services) getCity(ctx context.Context, id uint) (*models.City, error) {
	var city models.City
	if err := s.db.WithContext(ctx).First(&city, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("city %d not found", id)
		}
		return nil, storeError(err, "load city")
	}
	return &city, nil
}

func (s *Services) getZone(ctx context.Context, id uint) (*models.Zone, error) {
	var zone models.Zone
	if err := s.db.WithContext(ctx).Omit("boundary").First(&zone, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("zone %d not found", id)
		}
		return nil, storeError(err, "load zone")
	}
	return &zone, nil
}

// AddZones inserts each name on its own, so one bad name does not block the
// others. When anything was rejected the zones that did get created are
// returned together with a Conflict error listing the rejected names.
func (s *Services) AddZones(ctx context.Context, cityID uint, names []string) ([]models.Zone, error) {
	if len(names) == 0 {
		return nil, invalidArgument("at least one zone name is required")
	}
	if _, err := s.getCity(ctx, cityID); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	created := make([]models.Zone, 0, len(names))
	var failed []string
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			failed = append(failed, raw)
			continue
		}
		zone := models.Zone{CityID: cityID, Name: name, CreatedAt: s.now()}
		if err := db.Create(&zone).Error; err != nil {
			if isDuplicateKey(err) {
				failed = append(failed, name)
				continue
			}
			return created, storeError(err, "add zones")
		}
		created = append(created, zone)
	}

	logrus.WithFields(logrus.Fields{
		"city_id": cityID,
		"created": len(created),
		"failed":  len(failed),
	}).Info("zones added")

	if len(failed) > 0 {
		e := conflict("%d of %d zones could not be added", len(failed), len(names))
		e.Failed = failed
		return created, e
	}
	return created, nil
}

func (s *Services) ListZonesByCity(ctx context.Context, cityID uint) ([]ZoneView, error) {
	if _, err := s.getCity(ctx, cityID); err != nil {
		return nil, err
	}
	var zones []ZoneView
	err := s.db.WithContext(ctx).
		Table("zones").
		Select("zones.id, zones.city_id, cities.name AS city_name, zones.name, zones.created_at").
		Joins("JOIN cities ON cities.id = zones.city_id").
		Where("zones.city_id = ?", cityID).
		Order("zones.name asc").
		Scan(&zones).Error
	if err != nil {
		return nil, storeError(err, "list zones")
	}
	return zones, nil
}

func (s *Services) UpdateZone(ctx context.Context, id uint, name string) (*models.Zone, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidArgument("zone name is required")
	}
	zone, err := s.getZone(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(zone).Update("name", name).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, conflict("zone %q already exists in this city", name)
		}
		return nil, storeError(err, "update zone")
	}
	zone.Name = name
	return zone, nil
}

func (s *Services) DeleteZone(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Zone{}, id)
	if res.Error != nil {
		return storeError(res.Error, "delete zone")
	}
	if res.RowsAffected == 0 {
		return notFound("zone %d not found", id)
	}
	logrus.WithField("zone_id", id).Info("zone deleted")
	return nil
}

// SetZoneBoundary stores a GeoJSON polygon for the zone. An empty string
// clears it.
func (s *Services) SetZoneBoundary(ctx context.Context, id uint, geojson string) error {
	wkb, err := geo.BoundaryToWKB(strings.TrimSpace(geojson))
	if err != nil {
		return invalidArgument("invalid boundary: %v", err)
	}
	zone, err := s.getZone(ctx, id)
	if err != nil {
		return err
	}
	var value any = wkb
	if wkb == nil {
		value = gorm.Expr("NULL")
	}
	if err := s.db.WithContext(ctx).Model(zone).Update("boundary", value).Error; err != nil {
		return storeError(err, "set zone boundary")
	}
	return nil
}

// ZoneBoundary returns the zone's boundary as GeoJSON, or "" when unset.
func (s *Services) ZoneBoundary(ctx context.Context, id uint) (string, error) {
	var zone models.Zone
	if err := s.db.WithContext(ctx).Select("id", "boundary").First(&zone, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", notFound("zone %d not found", id)
		}
		return "", storeError(err, "load zone boundary")
	}
	out, err := geo.WKBToGeoJSON(zone.Boundary)
	if err != nil {
		return "", storeError(err, "decode zone boundary")
	}
	return out, nil
}

// LocateZone finds the first zone whose boundary contains the point.
func (s *Services) LocateZone(ctx context.Context, lat, lng float64) (*ZoneView, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, invalidArgument("coordinates out of range")
	}
	var zones []models.Zone
	err := s.db.WithContext(ctx).
		Where("boundary IS NOT NULL").
		Order("id asc").
		Find(&zones).Error
	if err != nil {
		return nil, storeError(err, "locate zone")
	}
	for _, z := range zones {
		ok, err := geo.Contains(z.Boundary, lng, lat)
		if err != nil {
			logrus.WithError(err).WithField("zone_id", z.ID).Warn("skipping zone with unreadable boundary")
			continue
		}
		if !ok {
			continue
		}
		view := ZoneView{ID: z.ID, CityID: z.CityID, Name: z.Name, CreatedAt: z.CreatedAt}
		if city, err := s.getCity(ctx, z.CityID); err == nil {
			view.CityName = city.Name
		}
		return &view, nil
	}
	return nil, notFound("no zone contains %.6f,%.6f", lat, lng)
}
