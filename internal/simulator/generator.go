package simulator

import (
	"math"
	"math/rand"
	"sync"

	"TankWatch.api/internal/models"
)

// Generator produces successive reading sets from a Profile. It is safe for
// use by overlapping cron runs.
type Generator struct {
	mu      sync.Mutex
	profile Profile
	rnd     *rand.Rand
	tick    int
}

func NewGenerator(p Profile, seed int64) *Generator {
	return &Generator{
		profile: p,
		rnd:     rand.New(rand.NewSource(seed)),
	}
}

// Next returns the reading set for the next tick. TDS and turbidity never go
// negative; pH is kept within 0–14.
func (g *Generator) Next() models.TankSet {
	g.mu.Lock()
	defer g.mu.Unlock()

	set := models.TankSet{
		Tank1: g.reading(g.profile.Tank1),
		Tank2: g.reading(g.profile.Tank2),
	}
	g.tick++
	return set
}

func (g *Generator) reading(p TankProfile) models.Reading {
	return models.Reading{
		TDS:       round(math.Max(0, g.sample(p.TDS)), 1),
		PH:        round(math.Min(14, math.Max(0, g.sample(p.PH))), 2),
		Turbidity: round(math.Max(0, g.sample(p.Turbidity)), 2),
	}
}

func (g *Generator) sample(m Metric) float64 {
	v := m.Base + m.Drift*float64(g.tick)
	if m.Jitter > 0 {
		v += (g.rnd.Float64()*2 - 1) * m.Jitter
	}
	return v
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
