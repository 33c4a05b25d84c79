package geo

import (
	"math"
	"testing"
)

func TestDirectInverseRoundTrip(t *testing.T) {
	cases := []struct {
		lat, lon, az, dist float64
	}{
		{40.6413, -73.7781, 90, 1000},
		{51.4700, -0.4543, 270, 3500},
		{-33.9399, 151.1753, 45, 2000},
		{0, 0, 0, 500},
	}

	for _, c := range cases {
		lat2, lon2, _ := Direct(c.lat, c.lon, c.az, c.dist)
		_, _, dist := Inverse(c.lat, c.lon, lat2, lon2)
		if math.Abs(dist-c.dist) > 1e-3 {
			t.Errorf("Direct/Inverse round trip: got distance %.6f, expected %.6f", dist, c.dist)
		}
	}
}

func TestInverseKnownDistance(t *testing.T) {
	// JFK to LAX, approximate great-circle distance ~3983 km.
	_, _, dist := Inverse(40.6413, -73.7781, 33.9416, -118.4085)
	const want = 3983000.0
	if math.Abs(dist-want) > 10000 {
		t.Errorf("JFK-LAX distance: got %.0f m, expected ~%.0f m", dist, want)
	}
}

func TestMidpoint(t *testing.T) {
	a := Point{Lon: 0, Lat: 0}
	b := Point{Lon: 1, Lat: 0}
	m := Midpoint(a, b)
	if math.Abs(m.Lat-0) > 1e-6 {
		t.Errorf("midpoint latitude: got %g, expected ~0", m.Lat)
	}
	if math.Abs(m.Lon-0.5) > 1e-3 {
		t.Errorf("midpoint longitude: got %g, expected ~0.5", m.Lon)
	}
}

func TestPointInPolygon(t *testing.T) {
	square := []Point{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 0}, {Lon: 1, Lat: 1}, {Lon: 0, Lat: 1}}
	if !PointInPolygon(Point{Lon: 0.5, Lat: 0.5}, square) {
		t.Error("expected center point to be inside the square")
	}
	if PointInPolygon(Point{Lon: 2, Lat: 2}, square) {
		t.Error("expected far point to be outside the square")
	}
}

func TestSignedAreaOrientation(t *testing.T) {
	ccw := []Point{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 0}, {Lon: 1, Lat: 1}, {Lon: 0, Lat: 1}}
	if SignedArea(ccw) <= 0 {
		t.Errorf("expected positive area for CCW ring, got %g", SignedArea(ccw))
	}
	cw := []Point{{Lon: 0, Lat: 0}, {Lon: 0, Lat: 1}, {Lon: 1, Lat: 1}, {Lon: 1, Lat: 0}}
	if SignedArea(cw) >= 0 {
		t.Errorf("expected negative area for CW ring, got %g", SignedArea(cw))
	}
}

func TestInteriorAngle(t *testing.T) {
	a := Point{Lon: -1, Lat: 0}
	b := Point{Lon: 0, Lat: 0}
	c := Point{Lon: 1, Lat: 0}
	// a-b-c colinear and "straight through": interior angle is 180.
	if got := InteriorAngleDeg(a, b, c); math.Abs(got-180) > 1e-6 {
		t.Errorf("straight angle: got %g, expected 180", got)
	}
	c2 := Point{Lon: 0, Lat: 1}
	if got := InteriorAngleDeg(a, b, c2); math.Abs(got-90) > 1e-6 {
		t.Errorf("right angle: got %g, expected 90", got)
	}
}
