package native

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/triangle/gpucore"
)

var errNilConfig = errors.New("native: nil surface configuration")

// OffscreenSurface is a gpucore.Surface backed by a single texture on the
// configured device. The texture can be read back after a frame.
//
// A Resize invalidates the texture: GetCurrentTexture reports
// gpucore.ErrSurfaceLost until the surface is configured again.
type OffscreenSurface struct {
	mu            sync.Mutex
	width, height uint32

	device  *Device
	config  gpucore.SurfaceConfiguration
	texture hal.Texture
	halView hal.TextureView
	view    gpucore.TextureViewID
	lost    bool
}

// NewOffscreenSurface creates an unconfigured surface of the given size.
func NewOffscreenSurface(width, height uint32) (*OffscreenSurface, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &OffscreenSurface{width: width, height: height}, nil
}

// Size returns the surface size in pixels.
func (s *OffscreenSurface) Size() (width, height uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Format returns the configured format, or TextureFormatUndefined.
func (s *OffscreenSurface) Format() gputypes.TextureFormat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Format
}

// Configure creates the surface texture on device. Configuring again with
// the same device and configuration keeps the existing texture.
func (s *OffscreenSurface) Configure(device gpucore.Device, config *gpucore.SurfaceConfiguration) error {
	d, ok := device.(*Device)
	if !ok {
		return fmt.Errorf("%w: %T", gpucore.ErrForeignDevice, device)
	}
	if config == nil {
		return errNilConfig
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device == d && s.config == *config && s.texture != nil && !s.lost {
		return nil
	}
	if d.isDestroyed() {
		return ErrDeviceDestroyed
	}
	s.releaseLocked()

	tex, err := d.hal.CreateTexture(&hal.TextureDescriptor{
		Label:         d.label + " offscreen",
		Size:          hal.Extent3D{Width: s.width, Height: s.height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        config.Format,
		Usage:         config.Usage | gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("native: create surface texture: %w", err)
	}
	view, err := d.hal.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: d.label + " offscreen view",
	})
	if err != nil {
		d.hal.DestroyTexture(tex)
		return fmt.Errorf("native: create surface view: %w", err)
	}
	if err := d.attachSurface(s); err != nil {
		d.hal.DestroyTextureView(view)
		d.hal.DestroyTexture(tex)
		return err
	}

	s.device = d
	s.config = *config
	s.texture = tex
	s.halView = view
	s.view = d.registerView(view)
	s.lost = false
	slogger().Debug("native: surface configured",
		"width", s.width, "height", s.height, "format", config.Format, "alpha", config.AlphaMode)
	return nil
}

// GetCurrentTexture returns the surface texture as the current frame.
func (s *OffscreenSurface) GetCurrentTexture() (gpucore.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lost {
		return gpucore.Frame{}, gpucore.ErrSurfaceLost
	}
	if s.texture == nil {
		return gpucore.Frame{}, gpucore.ErrSurfaceNotConfigured
	}
	return gpucore.Frame{
		View:   s.view,
		Format: s.config.Format,
		Width:  s.width,
		Height: s.height,
	}, nil
}

// Resize changes the surface size. The texture of a configured surface is
// released and the surface is lost until the next Configure.
func (s *OffscreenSurface) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if width == s.width && height == s.height {
		return nil
	}
	s.width, s.height = width, height
	if s.texture != nil {
		s.releaseLocked()
		s.lost = true
	}
	return nil
}

// Release destroys the surface texture. The surface can be configured
// again afterwards.
func (s *OffscreenSurface) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked()
	s.lost = false
}

func (s *OffscreenSurface) releaseLocked() {
	if s.texture == nil {
		return
	}
	d := s.device
	// The last frame or readback may still target the texture.
	if err := d.queue.drain(); err != nil {
		slogger().Warn("native: surface release", "device", d.label, "err", err)
	}
	d.unregisterView(s.view)
	d.hal.DestroyTextureView(s.halView)
	d.hal.DestroyTexture(s.texture)
	d.detachSurface(s)
	s.texture, s.halView, s.view = nil, nil, gpucore.InvalidID
}

// deviceLost is called by d.Destroy while the HAL device is still alive.
func (s *OffscreenSurface) deviceLost(d *Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.device != d || s.texture == nil {
		return
	}
	s.releaseLocked()
	s.lost = true
}
