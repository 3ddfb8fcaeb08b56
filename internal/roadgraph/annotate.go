package roadgraph

import (
	"strconv"
	"strings"
)

// AnnotationStatus summarizes a speed/travel-time annotation pass.
type AnnotationStatus int

const (
	// AnnotationFull means every edge received a travel time.
	AnnotationFull AnnotationStatus = iota
	// AnnotationPartial means some edges could not be annotated; weighted
	// search still works, with the default-speed estimate filling gaps.
	AnnotationPartial
	// AnnotationFailed means no edge received a travel time; downstream
	// weight choice degrades to length.
	AnnotationFailed
)

func (s AnnotationStatus) String() string {
	switch s {
	case AnnotationFull:
		return "full"
	case AnnotationPartial:
		return "partial"
	default:
		return "failed"
	}
}

// AnnotationResult reports how much of the graph was annotated.
type AnnotationResult struct {
	Status    AnnotationStatus
	Annotated int
	Skipped   int
}

const mphToKPH = 1.60934

// highwaySpeeds maps OSM highway classes to fallback speeds in km/h, used
// when a way carries no parseable maxspeed tag.
var highwaySpeeds = map[string]float64{
	"motorway":       100,
	"motorway_link":  60,
	"trunk":          85,
	"trunk_link":     55,
	"primary":        65,
	"primary_link":   50,
	"secondary":      55,
	"secondary_link": 45,
	"tertiary":       45,
	"tertiary_link":  40,
	"unclassified":   40,
	"residential":    30,
	"living_street":  10,
	"road":           40,
}

const defaultHighwaySpeedKPH = 40

// ApplySpeeds annotates every edge with a speed and travel time: the parsed
// maxspeed tag when present, the highway-class fallback otherwise. Edges
// with a non-positive length cannot get a travel time and are skipped. The
// result says whether the pass was full, partial, or failed; the graph's
// travel-time flag is set whenever at least one edge was annotated.
func ApplySpeeds(g *Graph) AnnotationResult {
	var edges []Edge
	g.Edges(func(e Edge) bool {
		edges = append(edges, e)
		return true
	})

	res := AnnotationResult{}
	for _, e := range edges {
		if e.LengthM <= 0 {
			res.Skipped++
			continue
		}

		speed, ok := parseMaxspeed(e.Maxspeed)
		if !ok {
			speed = fallbackSpeed(e.Highway)
		}

		e.SpeedKPH = speed
		e.TravelTimeS = e.LengthM / (speed / 3.6)
		e.HasTravelTime = true
		g.updateEdge(e)
		res.Annotated++
	}

	switch {
	case res.Annotated == 0:
		res.Status = AnnotationFailed
	case res.Skipped > 0:
		res.Status = AnnotationPartial
	default:
		res.Status = AnnotationFull
	}

	g.SetHasTravelTimes(res.Annotated > 0)
	return res
}

// parseMaxspeed extracts a km/h value from an OSM maxspeed tag. Handles
// plain numbers, "km/h" and "mph" suffixes, and multi-value tags by taking
// the first entry.
func parseMaxspeed(tag string) (float64, bool) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return 0, false
	}

	// "50;70" style multi-values: first entry wins.
	if i := strings.IndexByte(tag, ';'); i >= 0 {
		tag = tag[:i]
	}
	tag = strings.ToLower(strings.TrimSpace(tag))

	mph := false
	switch {
	case strings.HasSuffix(tag, "mph"):
		mph = true
		tag = strings.TrimSpace(strings.TrimSuffix(tag, "mph"))
	case strings.HasSuffix(tag, "km/h"):
		tag = strings.TrimSpace(strings.TrimSuffix(tag, "km/h"))
	case strings.HasSuffix(tag, "kph"):
		tag = strings.TrimSpace(strings.TrimSuffix(tag, "kph"))
	}

	v, err := strconv.ParseFloat(tag, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	if mph {
		v *= mphToKPH
	}
	return v, true
}

func fallbackSpeed(highway string) float64 {
	if s, ok := highwaySpeeds[highway]; ok {
		return s
	}
	return defaultHighwaySpeedKPH
}
