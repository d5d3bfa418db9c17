package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/eddy/components"
	"github.com/pthm-cable/eddy/fluid"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the complete fluid state for replay.
type Snapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`

	GridW         int     `json:"grid_w"`
	GridH         int     `json:"grid_h"`
	StartDensity  float64 `json:"start_density"`
	DiffusionRate float64 `json:"diffusion_rate"`
	Transport     string  `json:"transport"`

	Tick       int32   `json:"tick"`
	SimTimeSec float64 `json:"sim_time_sec"`

	// Cell values in x-major order (index x*GridH + y)
	Density []float64 `json:"density"`
	VelX    []float64 `json:"vel_x"`
	VelY    []float64 `json:"vel_y"`

	Emitters []EmitterState `json:"emitters,omitempty"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// EmitterState holds one emitter entity.
type EmitterState struct {
	X       float32 `json:"x"`
	Y       float32 `json:"y"`
	Radius  int     `json:"radius"`
	Density float64 `json:"density"`
	VelX    float64 `json:"vel_x"`
	VelY    float64 `json:"vel_y"`
	TTL     float32 `json:"ttl"`
	Forever bool    `json:"forever"`
}

// NewEmitterState flattens an emitter entity.
func NewEmitterState(pos components.Position, e components.Emitter) EmitterState {
	return EmitterState{
		X: pos.X, Y: pos.Y,
		Radius:  e.Radius,
		Density: e.Density,
		VelX:    e.VelX,
		VelY:    e.VelY,
		TTL:     e.TTL,
		Forever: e.Forever,
	}
}

// Components converts the state back into emitter components.
func (es EmitterState) Components() (components.Position, components.Emitter) {
	return components.Position{X: es.X, Y: es.Y}, components.Emitter{
		Radius:  es.Radius,
		Density: es.Density,
		VelX:    es.VelX,
		VelY:    es.VelY,
		TTL:     es.TTL,
		Forever: es.Forever,
	}
}

// CaptureFluid builds a snapshot of f's fields and solver parameters.
func CaptureFluid(f *fluid.Fluid) *Snapshot {
	vx, vy := f.VelocitySnapshot()
	return &Snapshot{
		Version:       SnapshotVersion,
		GridW:         f.Width(),
		GridH:         f.Height(),
		StartDensity:  f.StartDensity(),
		DiffusionRate: f.DiffusionRate(),
		Transport:     f.Transport().String(),
		Density:       f.DensityValues(),
		VelX:          vx.RawMatrix().Data,
		VelY:          vy.RawMatrix().Data,
	}
}

// Restore writes the snapshot's fields into f. Pressure and divergence are
// left alone; the next projection rebuilds them.
func (s *Snapshot) Restore(f *fluid.Fluid) error {
	if s.GridW != f.Width() || s.GridH != f.Height() {
		return fmt.Errorf("snapshot grid %dx%d does not match fluid %dx%d", s.GridW, s.GridH, f.Width(), f.Height())
	}
	n := s.GridW * s.GridH
	if len(s.Density) != n || len(s.VelX) != n || len(s.VelY) != n {
		return fmt.Errorf("snapshot fields have %d/%d/%d cells, want %d", len(s.Density), len(s.VelX), len(s.VelY), n)
	}

	for x := 0; x < s.GridW; x++ {
		for y := 0; y < s.GridH; y++ {
			i := x*s.GridH + y
			f.SetDensity(x, y, s.Density[i])
			f.SetVelocity(x, y, s.VelX[i], s.VelY[i])
		}
	}
	return nil
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
