// Package stats produces the user counters shown on the landing page. The
// figures are a deterministic function of the hour, so every instance agrees.
package stats

import (
	"math"
	"sync"
	"time"
)

const (
	InitialTotal = 300000
	MinActive    = 30000
	MaxActive    = 100000
)

// Epoch is the hour zero of the series.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Snapshot is the pair of counters for one hour.
type Snapshot struct {
	TotalUsers  int64 `json:"totalUsers"`
	ActiveUsers int64 `json:"activeUsers"`
	Hour        int64 `json:"hour"`
}

// HoursSinceEpoch floors the elapsed hours; times before the epoch give 0.
func HoursSinceEpoch(now time.Time) int64 {
	d := now.Sub(Epoch)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Hour)
}

func seeded(x float64) float64 {
	v := math.Sin(x) * 10000
	return v - math.Floor(v)
}

// Hourly is the increase of the total during hour h, between 50 and 1499.
func Hourly(h int64) int64 {
	return int64(math.Floor(seeded(float64(h)*1000)*1450)) + 50
}

// Active is the active user count for hour h.
func Active(h int64) int64 {
	variation := math.Sin(float64(h)*0.1)*0.3 + 0.7
	base := MinActive + (MaxActive-MinActive)*seeded(float64(h))
	return max(MinActive, int64(math.Floor(base*variation)))
}

// Calculator computes snapshots, reusing the running total between calls.
type Calculator struct {
	mu    sync.Mutex
	hours int64
	total int64
}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// At returns the snapshot for the hour containing now.
func (c *Calculator) At(now time.Time) Snapshot {
	hours := HoursSinceEpoch(now)

	c.mu.Lock()
	if hours < c.hours {
		c.hours, c.total = 0, 0
	}
	for h := c.hours; h < hours; h++ {
		c.total += Hourly(h)
	}
	c.hours = hours
	total := c.total
	c.mu.Unlock()

	return Snapshot{TotalUsers: InitialTotal + total, ActiveUsers: Active(hours), Hour: hours}
}
