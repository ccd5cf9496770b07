package stats

import "math"

// KDR returns kills divided by deaths, treating zero deaths as one, rounded
// half away from zero to two decimals.
func KDR(kills, deaths int) float64 {
	return math.Round(float64(kills)/float64(max(deaths, 1))*100) / 100
}
