package util

import (
	"math"
	"time"
)

// Minutes returns d in minutes rounded to two decimals
func Minutes(d time.Duration) float64 {
	return math.Round(d.Minutes()*100) / 100
}
