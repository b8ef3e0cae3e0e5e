package activity

import (
	"math"
	"time"
)

// DefaultHalfLife is the age at which a visit counts half as much.
const DefaultHalfLife = 7 * 24 * time.Hour

// Score ranks a record by visit count decayed by time since the last visit:
//
//	score = count * 2^(-age/halfLife)
//
// A record visited now scores its count; one halfLife later it scores half.
// Future timestamps (clock skew) are treated as age zero.
func Score(count int, lastVisited, now time.Time, halfLife time.Duration) float64 {
	if count <= 0 {
		return 0
	}
	if halfLife <= 0 {
		halfLife = DefaultHalfLife
	}
	age := now.Sub(lastVisited)
	if age < 0 {
		age = 0
	}
	return float64(count) * math.Exp2(-age.Seconds()/halfLife.Seconds())
}
