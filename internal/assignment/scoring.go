package assignment

import "math"

// Location is a planar coordinate pair.
type Location struct {
	Lat float64
	Lng float64
}

// Finite reports whether both coordinates are finite numbers.
func (l Location) Finite() bool {
	return !math.IsNaN(l.Lat) && !math.IsInf(l.Lat, 0) &&
		!math.IsNaN(l.Lng) && !math.IsInf(l.Lng, 0)
}

// Distance is the Euclidean distance between a and b in coordinate units.
func Distance(a, b Location) float64 {
	return math.Hypot(a.Lat-b.Lat, a.Lng-b.Lng)
}

const (
	baseScore      = 100.0
	distanceWeight = 10.0
	priorityWeight = 5.0
)

// Score rates inspector i for job j. Higher is better.
//
//	100 - 10*distance + 5*priority
func Score(i Inspector, j InspectionJob) float64 {
	return baseScore - distanceWeight*Distance(i.Location, j.Location) + priorityWeight*float64(j.Priority)
}

// Feasible reports whether i is skilled enough for j.
func Feasible(i Inspector, j InspectionJob) bool {
	return i.SkillLevel >= j.RequiredSkillLevel
}
