package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/petri/config"
	"github.com/pthm-cable/petri/sim"
	"github.com/pthm-cable/petri/voronoi"
)

func testSim(t *testing.T) (*config.Config, *sim.Simulation) {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading default config: %v", err)
	}
	s, err := sim.New(cfg, voronoi.New(), sim.Options{Seed: 1})
	if err != nil {
		t.Fatalf("building simulation: %v", err)
	}
	t.Cleanup(s.Close)
	return cfg, s
}

func TestCollectorCadence(t *testing.T) {
	_, s := testSim(t)
	col := NewCollector(5)

	col.Observe(s) // step 0 is on cadence
	for i := 0; i < 12; i++ {
		if err := s.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		col.Observe(s)
	}

	recs := col.Records()
	if len(recs) != 3 { // steps 0, 5, 10
		t.Fatalf("records = %d, want 3", len(recs))
	}
	for i, want := range []int{0, 5, 10} {
		if recs[i].Step != want {
			t.Errorf("record %d sampled step %d, want %d", i, recs[i].Step, want)
		}
	}

	last := recs[len(recs)-1]
	if last.Total != last.CountA+last.CountB+last.CountC {
		t.Errorf("census counts inconsistent: %+v", last)
	}
	if last.MeanRegionArea <= 0 {
		t.Errorf("mean region area = %v, want > 0", last.MeanRegionArea)
	}
}

func TestOutputManagerWritesRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	cfg, s := testSim(t)
	col := NewCollector(1)
	col.Observe(s)
	if err := s.Step(); err != nil {
		t.Fatal(err)
	}
	col.Observe(s)

	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if err := om.WriteCensus(col.Records()); err != nil {
		t.Fatalf("writing census: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "census.csv"))
	if err != nil {
		t.Fatal(err)
	}
	header := strings.SplitN(string(raw), "\n", 2)[0]
	for _, name := range []string{"step", "sim_time", "total", "count_a", "mean_spring_len"} {
		if !strings.Contains(header, name) {
			t.Errorf("census header %q missing column %q", header, name)
		}
	}

	var back []Census
	f, err := os.Open(filepath.Join(dir, "census.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := gocsv.UnmarshalFile(f, &back); err != nil {
		t.Fatalf("reading census.csv back: %v", err)
	}
	if len(back) != 2 || back[0].Step != 0 || back[1].Step != 1 {
		t.Errorf("round-tripped records = %+v, want steps 0 and 1", back)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
}

func TestNilOutputManagerIsNoOp(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatal(err)
	}
	if om != nil {
		t.Fatal("empty dir should disable output")
	}
	if err := om.WriteConfig(nil); err != nil {
		t.Errorf("nil manager WriteConfig: %v", err)
	}
	if err := om.WriteCensus(nil); err != nil {
		t.Errorf("nil manager WriteCensus: %v", err)
	}
}
