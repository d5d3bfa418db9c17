package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/eddy/components"
)

// DensityRenderer uploads a Raster to a GPU texture and draws it.
type DensityRenderer struct {
	raster *Raster
	cmap   *Colormap

	tex         rl.Texture2D
	initialized bool
}

// NewDensityRenderer creates a renderer for the given raster and colormap.
func NewDensityRenderer(raster *Raster, cmap *Colormap) *DensityRenderer {
	return &DensityRenderer{raster: raster, cmap: cmap}
}

// Init creates the texture (must be called after raylib window is created).
func (r *DensityRenderer) Init() {
	if r.initialized {
		return
	}
	img := rl.GenImageColor(r.raster.W, r.raster.H, rl.Black)
	r.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(r.tex, rl.FilterPoint)
	rl.UnloadImage(img)
	r.initialized = true
}

// SetColormap swaps the colormap used by the next Update.
func (r *DensityRenderer) SetColormap(cmap *Colormap) {
	r.cmap = cmap
}

// Update re-renders src into the raster and uploads it.
func (r *DensityRenderer) Update(src DensitySource) {
	if !r.initialized {
		r.Init()
	}
	r.raster.Render(src, r.cmap)
	rl.UpdateTexture(r.tex, r.raster.Pix)
}

// Draw blits the density texture at the window origin.
func (r *DensityRenderer) Draw() {
	if !r.initialized {
		return
	}
	rl.DrawTexture(r.tex, 0, 0, rl.White)
}

// DrawEmitters marks emitter positions with small rings.
func (r *DensityRenderer) DrawEmitters(positions []components.Position) {
	p := float32(r.raster.Precision)
	for _, pos := range positions {
		cx := int32(pos.X*p + p/2)
		cy := int32(pos.Y*p + p/2)
		rl.DrawCircleLines(cx, cy, 2*p, rl.Orange)
	}
}

// Unload frees GPU resources.
func (r *DensityRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadTexture(r.tex)
	r.initialized = false
}
