// Package geo converts zone boundaries between GeoJSON and WKB and answers
// point-in-zone questions.
package geo

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
	"github.com/twpayne/go-geom/xy"
)

var ErrNotPolygon = errors.New("boundary must be a Polygon or MultiPolygon")

// BoundaryToWKB parses a GeoJSON Polygon or MultiPolygon and returns WKB
// bytes. An empty string clears the boundary.
func BoundaryToWKB(raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}
	var g geom.T
	if err := gjson.Unmarshal([]byte(raw), &g); err != nil {
		return nil, fmt.Errorf("invalid geojson: %w", err)
	}
	switch g.(type) {
	case *geom.Polygon, *geom.MultiPolygon:
	default:
		return nil, ErrNotPolygon
	}
	return wkb.Marshal(g, binary.LittleEndian)
}

// WKBToGeoJSON converts WKB bytes into a GeoJSON string.
func WKBToGeoJSON(wkbBytes []byte) (string, error) {
	if len(wkbBytes) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Contains reports whether the point (lng, lat) lies inside the boundary,
// holes excluded. Points on an edge count as inside.
func Contains(wkbBytes []byte, lng, lat float64) (bool, error) {
	if len(wkbBytes) == 0 {
		return false, nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return false, err
	}
	p := geom.Coord{lng, lat}
	switch t := g.(type) {
	case *geom.Polygon:
		return polygonContains(t, p), nil
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			if polygonContains(t.Polygon(i), p) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, ErrNotPolygon
	}
}

func polygonContains(poly *geom.Polygon, p geom.Coord) bool {
	if poly.NumLinearRings() == 0 {
		return false
	}
	layout := poly.Layout()
	if !xy.IsPointInRing(layout, p, poly.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < poly.NumLinearRings(); i++ {
		if xy.IsPointInRing(layout, p, poly.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}
