package sim

import (
	"runtime"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/petri/species"
)

// parallelThreshold is the minimum alive count to use parallel force
// evaluation. Below this, single-threaded is faster due to goroutine
// overhead.
const parallelThreshold = 64

// cellSnapshot captures read-only state for the force compute phase.
type cellSnapshot struct {
	ID      int64
	Kind    species.Kind
	Pos     r2.Vec
	Thermal r2.Vec
}

// moveIntent is the computed output applied after the compute phase.
type moveIntent struct {
	Vel r2.Vec
}

// workChunk is a range of snapshot indices for one worker.
type workChunk struct {
	start, end int
}

// parallelState holds resources for parallel velocity computation.
type parallelState struct {
	snapshots  []cellSnapshot
	intents    []moveIntent
	numWorkers int

	workChan chan workChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newParallelState() *parallelState {
	return &parallelState{
		numWorkers: runtime.GOMAXPROCS(0),
		snapshots:  make([]cellSnapshot, 0, 512),
		intents:    make([]moveIntent, 0, 512),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(s *Simulation) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(s)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker processes chunks until stopped.
func (p *parallelState) worker(s *Simulation) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			s.computeChunk(chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// computeParallel dispatches velocity computation to the worker pool.
func (s *Simulation) computeParallel(n int) {
	if !s.parallel.running {
		s.parallel.startWorkers(s)
	}

	numWorkers := s.parallel.numWorkers
	chunkSize := (n + numWorkers - 1) / numWorkers

	chunksDispatched := 0
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		s.parallel.workChan <- workChunk{start: start, end: end}
		chunksDispatched++
	}

	for i := 0; i < chunksDispatched; i++ {
		<-s.parallel.doneChan
	}
}

// computeChunk evaluates velocities for a range of snapshots. Writes
// target disjoint intent slots; all reads are against the immutable
// snapshot and the not-yet-moved store positions.
func (s *Simulation) computeChunk(i0, i1 int) {
	for i := i0; i < i1; i++ {
		s.parallel.intents[i] = moveIntent{Vel: s.computeVelocity(&s.parallel.snapshots[i])}
	}
}
