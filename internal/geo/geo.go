// Package geo computes great-circle distances and assembles season legs.
package geo

import (
	"math"

	"fleetops/internal/model"
)

const earthRadiusKm = 6371.0

// DefaultSpeedKmh is used when no average speed is supplied.
const DefaultSpeedKmh = 80.0

// Haversine returns the great-circle distance between two coordinates in
// kilometers. Identical coordinates yield zero.
func Haversine(a, b model.Coordinate) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// BuildLegs pairs each race with its immediate successor: N races yield N-1
// legs in calendar order. Fewer than two races yields an empty slice, not an
// error. Travel time is distance over the average speed; a non-positive
// speed falls back to DefaultSpeedKmh.
func BuildLegs(races []model.RaceEvent, avgSpeedKmh float64) []model.Leg {
	if avgSpeedKmh <= 0 {
		avgSpeedKmh = DefaultSpeedKmh
	}
	if len(races) < 2 {
		return []model.Leg{}
	}
	legs := make([]model.Leg, 0, len(races)-1)
	for i := 0; i < len(races)-1; i++ {
		from := races[i].Circuit
		to := races[i+1].Circuit
		dist := Haversine(from.Location, to.Location)
		legs = append(legs, model.Leg{
			From:        from,
			To:          to,
			DistanceKm:  dist,
			TravelHours: dist / avgSpeedKmh,
		})
	}
	return legs
}

// BoundingBox returns the min/max corners enclosing all circuits.
func BoundingBox(circuits []model.Circuit) (min, max model.Coordinate) {
	if len(circuits) == 0 {
		return model.Coordinate{}, model.Coordinate{}
	}
	min = circuits[0].Location
	max = circuits[0].Location
	for _, c := range circuits[1:] {
		if c.Location.Lat < min.Lat {
			min.Lat = c.Location.Lat
		}
		if c.Location.Lon < min.Lon {
			min.Lon = c.Location.Lon
		}
		if c.Location.Lat > max.Lat {
			max.Lat = c.Location.Lat
		}
		if c.Location.Lon > max.Lon {
			max.Lon = c.Location.Lon
		}
	}
	return min, max
}

// Center returns the arithmetic mean of all circuit coordinates.
func Center(circuits []model.Circuit) model.Coordinate {
	if len(circuits) == 0 {
		return model.Coordinate{}
	}
	var lat, lon float64
	for _, c := range circuits {
		lat += c.Location.Lat
		lon += c.Location.Lon
	}
	n := float64(len(circuits))
	return model.Coordinate{Lat: lat / n, Lon: lon / n}
}
