package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/petri/config"
)

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir string
}

// NewOutputManager creates the output directory. Returns nil if dir is
// empty (output disabled); callers may use a nil manager freely.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &OutputManager{dir: dir}, nil
}

// WriteConfig saves the run's configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteCensus writes all collected census records to census.csv.
func (om *OutputManager) WriteCensus(records []Census) error {
	if om == nil {
		return nil
	}
	f, err := os.Create(filepath.Join(om.dir, "census.csv"))
	if err != nil {
		return fmt.Errorf("creating census.csv: %w", err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&records, f); err != nil {
		return fmt.Errorf("writing census.csv: %w", err)
	}
	return nil
}
