// Package telemetry samples the engine's read-only query surface into
// census records and writes them as CSV. It never mutates simulation
// state; the engine does not know it exists.
package telemetry

import (
	"github.com/pthm-cable/petri/sim"
	"github.com/pthm-cable/petri/species"
)

// Census is one sampled population record.
type Census struct {
	Step             int     `csv:"step"`
	SimTime          float64 `csv:"sim_time"`
	Total            int     `csv:"total"`
	Dead             int     `csv:"dead"`
	CountA           int     `csv:"count_a"`
	CountB           int     `csv:"count_b"`
	CountC           int     `csv:"count_c"`
	MeanRegionArea   float64 `csv:"mean_region_area"`
	MeanSpringLength float64 `csv:"mean_spring_len"`
}

// Collector samples a simulation every SampleEvery steps.
type Collector struct {
	every   int
	records []Census
}

// NewCollector creates a collector sampling every `every` steps.
// every < 1 samples every step.
func NewCollector(every int) *Collector {
	if every < 1 {
		every = 1
	}
	return &Collector{every: every}
}

// Observe samples s if its step count is on the sampling cadence.
func (c *Collector) Observe(s *sim.Simulation) {
	if s.StepCount()%c.every != 0 {
		return
	}
	cs := s.Census()
	c.records = append(c.records, Census{
		Step:             cs.Step,
		SimTime:          cs.Time,
		Total:            cs.Total,
		Dead:             cs.Dead,
		CountA:           cs.ByKind[species.A],
		CountB:           cs.ByKind[species.B],
		CountC:           cs.ByKind[species.C],
		MeanRegionArea:   s.MeanRegionArea(),
		MeanSpringLength: s.MeanSpringLength(),
	})
}

// Records returns all collected census records.
func (c *Collector) Records() []Census {
	return c.records
}
