package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// DepthHandoff copies the geometry pass depth into the surface depth so
// forward overlays are occluded by deferred geometry.
//
// Source and Target must both be DepthFormat with the same extent. Both are
// created from the fixed surface size, so this is not checked per frame.
type DepthHandoff struct {
	Source *wgpu.Texture
	Target *wgpu.Texture
	Width  uint32
	Height uint32
}

func (d *DepthHandoff) Record(frame Frame) error {
	if err := frame.CopyTextureToTexture(d.Source, d.Target, d.Width, d.Height); err != nil {
		return fmt.Errorf("depth handoff: %w", err)
	}
	return nil
}
