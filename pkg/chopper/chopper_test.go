package chopper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/terragear-go/genapts/pkg/counter"
	"github.com/terragear-go/genapts/pkg/geo"
	"github.com/terragear-go/genapts/pkg/polygon"
)

func square(minLon, minLat, maxLon, maxLat float64) polygon.Polygon {
	return polygon.Polygon{Contours: []polygon.Contour{{Points: []geo.Point{
		{Lon: minLon, Lat: minLat},
		{Lon: maxLon, Lat: minLat},
		{Lon: maxLon, Lat: maxLat},
		{Lon: minLon, Lat: maxLat},
	}}}}
}

func TestAddAccumulatesIntoCoveringBuckets(t *testing.T) {
	c := New(t.TempDir())
	c.Add(square(-0.5, -0.5, 0.5, 0.5), Hole, nil)

	if len(c.entries) == 0 {
		t.Fatal("expected at least one bucket to receive a clipped piece")
	}
}

func TestFlushWritesOneFilePerEntry(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	c.Add(square(-0.5, -0.5, 0.5, 0.5), Clearing, nil)

	cnt, err := counter.Open(filepath.Join(dir, "counter.txt"))
	if err != nil {
		t.Fatalf("unexpected counter error: %v", err)
	}
	if err := c.Flush(cnt, nil); err != nil {
		t.Fatalf("unexpected flush error: %v", err)
	}

	var found int
	filepath.Walk(filepath.Join(dir, "AirportArea"), func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			found++
		}
		return nil
	})
	if found == 0 {
		t.Error("expected Flush to write at least one polygon file")
	}
}

func TestAddSkipsBucketsWithNoOverlap(t *testing.T) {
	c := New(t.TempDir())
	// A small square near the pole: Add records only the non-empty
	// pieces of its clip against each covering cell, never an empty list.
	c.Add(square(179.0, 89.5, 179.01, 89.51), Hole, nil)
	for _, byKind := range c.entries {
		for _, list := range byKind {
			if len(list) == 0 {
				t.Error("expected no empty entry lists to be recorded")
			}
		}
	}
}
