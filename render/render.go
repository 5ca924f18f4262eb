// Package render defines the interfaces the out-of-scope external
// renderer and UI overlay talk to (§1/§6). Nothing in this repo
// implements a real GPU-backed texture or camera: the ray-marched 3D
// texture, wireframe, and camera math are consumers of the engine's
// current read buffers, specified only through these interfaces, per
// §1's "Each is specified only via the interfaces in §6."
package render

// Texture is an opaque handle to whatever 3D texture resource the
// external renderer allocates against the current voxel buffer (§4.3's
// "one 3D render texture" buffer-fabric slot). The core engine never
// interprets its contents or format — that is entirely the renderer's
// concern.
type Texture struct {
	ID uint64
}

// Sink is implemented by the external renderer. The engine publishes
// its current read-side voxel and temperature buffers to it after every
// Tick or Advance call so the renderer can re-upload them into its own GPU texture
// (§1/§6: current_read_voxels/current_read_temperatures are
// consumer-facing interfaces, not engine-owned GPU state).
type Sink interface {
	Publish(voxels []uint32, temperatures []float32, gridSize int)
}

// PickRequester is implemented by the external renderer: it resolves a
// screen-space pick request into a world voxel coordinate using the
// camera/ray math this engine deliberately does not own (§1). The
// engine's RequestPick/TakePickResult pair (§6) only look up and
// snapshot the voxel at the coordinate the renderer resolves.
type PickRequester interface {
	ScreenToVoxel(screenX, screenY, screenW, screenH int) (x, y, z int, ok bool)
}

// NullSink is a no-op Sink for headless runs and tests that don't wire
// up a real renderer.
type NullSink struct{}

// Publish discards its arguments.
func (NullSink) Publish(_ []uint32, _ []float32, _ int) {}
