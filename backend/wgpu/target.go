//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// depthFormat is the format of the depth attachment.
const depthFormat = gputypes.TextureFormatDepth24PlusStencil8

// renderTarget is the offscreen color and depth attachment pair.
type renderTarget struct {
	width, height uint32
	format        gputypes.TextureFormat

	colorTex  hal.Texture
	colorView hal.TextureView
	depthTex  hal.Texture
	depthView hal.TextureView
}

// ensure creates or re-creates the textures when the requested size or
// format differs from the current one.
func (t *renderTarget) ensure(device hal.Device, w, h uint32, format gputypes.TextureFormat) error {
	if t.colorTex != nil && t.width == w && t.height == h && t.format == format {
		return nil
	}
	t.destroy(device)

	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	colorTex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "debugdraw_color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create color texture: %w", err)
	}
	t.colorTex = colorTex

	colorView, err := device.CreateTextureView(colorTex, &hal.TextureViewDescriptor{
		Label: "debugdraw_color_view",
	})
	if err != nil {
		t.destroy(device)
		return fmt.Errorf("create color view: %w", err)
	}
	t.colorView = colorView

	depthTex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "debugdraw_depth",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        depthFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.destroy(device)
		return fmt.Errorf("create depth texture: %w", err)
	}
	t.depthTex = depthTex

	depthView, err := device.CreateTextureView(depthTex, &hal.TextureViewDescriptor{
		Label: "debugdraw_depth_view",
	})
	if err != nil {
		t.destroy(device)
		return fmt.Errorf("create depth view: %w", err)
	}
	t.depthView = depthView

	t.width, t.height, t.format = w, h, format
	return nil
}

// destroy releases views before their textures. Each resource is nil
// checked to support partial cleanup.
func (t *renderTarget) destroy(device hal.Device) {
	if t.depthView != nil {
		device.DestroyTextureView(t.depthView)
		t.depthView = nil
	}
	if t.depthTex != nil {
		device.DestroyTexture(t.depthTex)
		t.depthTex = nil
	}
	if t.colorView != nil {
		device.DestroyTextureView(t.colorView)
		t.colorView = nil
	}
	if t.colorTex != nil {
		device.DestroyTexture(t.colorTex)
		t.colorTex = nil
	}
	t.width, t.height = 0, 0
}
