package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/image-maker/internal/catalog"
)

// ManifestName is the file name of the run manifest in the output directory.
const ManifestName = "manifest.json"

// Manifest records how a run was produced so it can be repeated.
type Manifest struct {
	RunID      string           `json:"run_id"`
	Seed       uint64           `json:"seed"`
	ObjDir     string           `json:"obj_dir"`
	BkgDir     string           `json:"bkg_dir"`
	Classes    []catalog.Object `json:"classes"`
	Counts     []int            `json:"counts"`
	Enabled    []string         `json:"enabled_transforms"`

	// TransparentKey is the keyed-out colour, empty when objects overwrite
	// the background.
	TransparentKey string `json:"transparent_key,omitempty"`

	Summary    *Summary  `json:"summary,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
}

// NewManifest starts a manifest with a fresh run id.
func NewManifest(seed uint64, objDir, bkgDir string, cat *catalog.Catalog, counts []int, enabled []string) *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		Seed:      seed,
		ObjDir:    objDir,
		BkgDir:    bkgDir,
		Classes:   slices.Clone(cat.Objects),
		Counts:    slices.Clone(counts),
		Enabled:   slices.Clone(enabled),
		StartedAt: time.Now().UTC(),
	}
}

// Finish stamps the manifest with the run summary.
func (m *Manifest) Finish(summary *Summary) {
	m.Summary = summary
	m.FinishedAt = time.Now().UTC()
}

// WriteManifest writes m as indented JSON to dir/manifest.json.
func WriteManifest(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}
