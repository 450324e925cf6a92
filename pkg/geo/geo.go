// Package geo implements the attendance geofence.
package geo

import "math"

// EarthRadius in meters.
const EarthRadius = 6371000.0

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Distance returns the great-circle distance between a and b in meters
// using the Haversine formula.
func Distance(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadius * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Fence is a circular area around an office.
type Fence struct {
	Name   string
	Center Point
	Radius float64
}

// Check is the outcome of a geofence test. Distance is rounded to whole meters.
type Check struct {
	Valid    bool
	Distance int
	Radius   int
}

// Check tests whether p lies within the fence. The boundary is inclusive.
func (f Fence) Check(p Point) Check {
	d := int(math.Round(Distance(f.Center, p)))
	return Check{Valid: float64(d) <= f.Radius, Distance: d, Radius: int(f.Radius)}
}

// Offset moves p by north and east meters. Used to build test fixtures and
// to describe positions relative to the office.
func Offset(p Point, north, east float64) Point {
	dLat := north / EarthRadius * 180 / math.Pi
	dLon := east / (EarthRadius * math.Cos(p.Latitude*math.Pi/180)) * 180 / math.Pi
	return Point{Latitude: p.Latitude + dLat, Longitude: p.Longitude + dLon}
}
