// Package config parses the builder binary's command-line surface,
// in the style of cmd/vice/main.go's flag-driven configuration.
package config

import (
	"flag"
	"fmt"
)

// Config is the fully-parsed command-line surface for one build run.
type Config struct {
	Work  string
	Input string

	StartID string
	Airport string

	MinLon, MaxLon, MinLat, MaxLat float64
	HaveBoundingBox                bool

	Nudge    int
	MaxSlope float64

	ClearDEMPath string
	DEMPaths     []string
	Terrain      []string

	Verbose bool
}

// repeatableFlag collects every occurrence of a repeatable flag (e.g.
// multiple --dem-path args) into a string slice, the same
// flag.Value pattern the standard library documents for repeatable
// flags.
type repeatableFlag struct{ values *[]string }

func (r repeatableFlag) String() string { return "" }
func (r repeatableFlag) Set(s string) error {
	*r.values = append(*r.values, s)
	return nil
}

// Parse builds a Config from args (typically os.Args[1:]), validating
// that the two required flags (--work, --input) are present.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("genapts", flag.ContinueOnError)

	c := &Config{}
	fs.StringVar(&c.Work, "work", "", "output root directory (required)")
	fs.StringVar(&c.Input, "input", "", "authoritative airport description file (required)")
	fs.StringVar(&c.StartID, "start-id", "", "skip airports before this id in the input file")
	fs.StringVar(&c.Airport, "airport", "", "build only this airport id")

	var haveMinLon, haveMaxLon, haveMinLat, haveMaxLat bool
	fs.Func("min-lon", "minimum longitude of the bounding box filter", func(s string) error {
		haveMinLon = true
		return parseFloatInto(&c.MinLon, s)
	})
	fs.Func("max-lon", "maximum longitude of the bounding box filter", func(s string) error {
		haveMaxLon = true
		return parseFloatInto(&c.MaxLon, s)
	})
	fs.Func("min-lat", "minimum latitude of the bounding box filter", func(s string) error {
		haveMinLat = true
		return parseFloatInto(&c.MinLat, s)
	})
	fs.Func("max-lat", "maximum latitude of the bounding box filter", func(s string) error {
		haveMaxLat = true
		return parseFloatInto(&c.MaxLat, s)
	})

	fs.IntVar(&c.Nudge, "nudge", 10, "integer stability-heuristic multiplier")
	fs.Float64Var(&c.MaxSlope, "max-slope", 0.2, "reject terrain fit when local slope exceeds this")

	fs.StringVar(&c.ClearDEMPath, "clear-dem-path", "", "clearing DEM path (stored in the config; the build does not read it)")
	fs.Var(repeatableFlag{&c.DEMPaths}, "dem-path", "DEM source directory (repeatable)")
	fs.Var(repeatableFlag{&c.Terrain}, "terrain", "named DEM source (repeatable)")

	fs.BoolVar(&c.Verbose, "verbose", false, "raise log detail")
	fs.BoolVar(&c.Verbose, "v", false, "raise log detail (shorthand)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if c.Work == "" {
		return nil, fmt.Errorf("config: --work is required")
	}
	if c.Input == "" {
		return nil, fmt.Errorf("config: --input is required")
	}
	c.HaveBoundingBox = haveMinLon && haveMaxLon && haveMinLat && haveMaxLat
	return c, nil
}

func parseFloatInto(dst *float64, s string) error {
	_, err := fmt.Sscanf(s, "%g", dst)
	return err
}
