package corpus

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// corpusFile is the on-disk YAML layout of a policy seed file.
type corpusFile struct {
	Policies []Record `yaml:"policies"`
}

// LoadFile reads a YAML policy list. Records are not validated here; Build
// skips malformed ones.
func LoadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path from trusted config
	if err != nil {
		return nil, fmt.Errorf("read corpus file: %w", err)
	}
	var f corpusFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse corpus file: %w", err)
	}
	return f.Policies, nil
}

// FileSource is a Source backed by a YAML file.
type FileSource struct {
	Path string
}

// Name identifies the source for reload deduplication.
func (f FileSource) Name() string { return "file:" + f.Path }

// Load reads the file.
func (f FileSource) Load(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	return LoadFile(f.Path)
}

// HealthCheck reports whether the file is still readable.
func (f FileSource) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(f.Path); err != nil {
		return fmt.Errorf("corpus file: %w", err)
	}
	return nil
}
