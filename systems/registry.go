package systems

import "github.com/pthm-cable/eddy/telemetry"

// SystemInfo describes a tick phase for UI display.
type SystemInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this phase does
	Category    string // Grouping (e.g., "input", "solver")
}

// SystemRegistry holds metadata about every tick phase.
// This centralizes phase naming so the HUD and perf tracker stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with all known phases.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.registerDefaults()
	return reg
}

func (r *SystemRegistry) registerDefaults() {
	r.Register(SystemInfo{ID: telemetry.PhaseInput, Name: "Input", Description: "Pointer brush injection", Category: "input"})
	r.Register(SystemInfo{ID: telemetry.PhaseEmitters, Name: "Emitters", Description: "Persistent sources", Category: "input"})

	// Solver stages, in Step order
	r.Register(SystemInfo{ID: telemetry.PhaseAdvectVelocity, Name: "Advect Vel", Description: "Self-advection of velocity", Category: "solver"})
	r.Register(SystemInfo{ID: telemetry.PhaseProject, Name: "Project", Description: "Pressure projection", Category: "solver"})
	r.Register(SystemInfo{ID: telemetry.PhaseDiffuse, Name: "Diffuse", Description: "Density diffusion", Category: "solver"})
	r.Register(SystemInfo{ID: telemetry.PhaseAdvectDensity, Name: "Advect Dens", Description: "Density transport", Category: "solver"})

	r.Register(SystemInfo{ID: telemetry.PhaseTelemetry, Name: "Telemetry", Description: "Stats and streaming", Category: "internal"})
}

// Register adds a phase to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// Get returns phase info by ID.
func (r *SystemRegistry) Get(id string) (SystemInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a phase ID.
// Falls back to the ID itself if not found.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered phases.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// ByCategory returns phases filtered by category.
func (r *SystemRegistry) ByCategory(category string) []SystemInfo {
	var result []SystemInfo
	for _, info := range r.systems {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// IDs returns all phase IDs in registration order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
