package native

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/triangle/gpucore"
)

var bgraConfig = &gpucore.SurfaceConfiguration{
	Format: gputypes.TextureFormatBGRA8Unorm,
	Usage:  gputypes.TextureUsageRenderAttachment,
}

type foreignDevice struct{ gpucore.Device }

func TestNewOffscreenSurfaceDimensions(t *testing.T) {
	for _, size := range [][2]uint32{{0, 1}, {1, 0}, {0, 0}} {
		if _, err := NewOffscreenSurface(size[0], size[1]); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("NewOffscreenSurface(%d, %d) = %v, want ErrInvalidDimensions", size[0], size[1], err)
		}
	}
}

func TestSurfaceNotConfigured(t *testing.T) {
	s, _ := NewOffscreenSurface(4, 4)
	if _, err := s.GetCurrentTexture(); !errors.Is(err, gpucore.ErrSurfaceNotConfigured) {
		t.Errorf("GetCurrentTexture() = %v, want ErrSurfaceNotConfigured", err)
	}
	if _, err := s.Readback(); !errors.Is(err, gpucore.ErrSurfaceNotConfigured) {
		t.Errorf("Readback() = %v, want ErrSurfaceNotConfigured", err)
	}
}

func TestSurfaceConfigure(t *testing.T) {
	d := newTestDevice(t)
	s, _ := NewOffscreenSurface(32, 16)

	if err := s.Configure(foreignDevice{}, bgraConfig); !errors.Is(err, gpucore.ErrForeignDevice) {
		t.Errorf("Configure(foreign) = %v, want ErrForeignDevice", err)
	}
	if err := s.Configure(d, nil); err == nil {
		t.Error("Configure(nil config) succeeded")
	}

	if err := s.Configure(d, bgraConfig); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	first, err := s.GetCurrentTexture()
	if err != nil {
		t.Fatalf("GetCurrentTexture: %v", err)
	}
	if first.Width != 32 || first.Height != 16 || first.Format != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("frame = %+v, want 32x16 BGRA8Unorm", first)
	}

	if err := s.Configure(d, bgraConfig); err != nil {
		t.Fatalf("second Configure: %v", err)
	}
	again, _ := s.GetCurrentTexture()
	if again.View != first.View {
		t.Errorf("identical Configure replaced the view: %d -> %d", first.View, again.View)
	}

	rgba := *bgraConfig
	rgba.Format = gputypes.TextureFormatRGBA8Unorm
	if err := s.Configure(d, &rgba); err != nil {
		t.Fatalf("Configure(RGBA): %v", err)
	}
	changed, _ := s.GetCurrentTexture()
	if changed.View == first.View {
		t.Error("format change kept the old view")
	}
	if _, ok := d.view(first.View); ok {
		t.Error("old view still registered")
	}
	if s.Format() != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Format() = %v, want RGBA8Unorm", s.Format())
	}
}

func TestSurfaceResize(t *testing.T) {
	d := newTestDevice(t)
	s, _ := NewOffscreenSurface(8, 8)
	if err := s.Configure(d, bgraConfig); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	if err := s.Resize(8, 8); err != nil {
		t.Fatalf("Resize(same): %v", err)
	}
	if _, err := s.GetCurrentTexture(); err != nil {
		t.Fatalf("same-size Resize lost the surface: %v", err)
	}

	if err := s.Resize(0, 8); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("Resize(0, 8) = %v, want ErrInvalidDimensions", err)
	}
	if err := s.Resize(12, 10); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if _, err := s.GetCurrentTexture(); !errors.Is(err, gpucore.ErrSurfaceLost) {
		t.Fatalf("GetCurrentTexture after Resize = %v, want ErrSurfaceLost", err)
	}
	if err := s.Configure(d, bgraConfig); err != nil {
		t.Fatalf("reconfigure: %v", err)
	}
	frame, err := s.GetCurrentTexture()
	if err != nil {
		t.Fatalf("GetCurrentTexture: %v", err)
	}
	if frame.Width != 12 || frame.Height != 10 {
		t.Errorf("frame size = %dx%d, want 12x10", frame.Width, frame.Height)
	}
}

func TestSurfaceDeviceDestroyed(t *testing.T) {
	d := newTestDevice(t)
	s, _ := NewOffscreenSurface(8, 8)
	if err := s.Configure(d, bgraConfig); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	d.Destroy()

	if _, err := s.GetCurrentTexture(); !errors.Is(err, gpucore.ErrSurfaceLost) {
		t.Errorf("GetCurrentTexture() = %v, want ErrSurfaceLost", err)
	}
	if err := s.Configure(d, bgraConfig); !errors.Is(err, ErrDeviceDestroyed) {
		t.Errorf("Configure(destroyed) = %v, want ErrDeviceDestroyed", err)
	}
}

func TestSurfaceRelease(t *testing.T) {
	d := newTestDevice(t)
	s, _ := NewOffscreenSurface(8, 8)
	if err := s.Configure(d, bgraConfig); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	s.Release()
	s.Release()
	if _, err := s.GetCurrentTexture(); !errors.Is(err, gpucore.ErrSurfaceNotConfigured) {
		t.Errorf("GetCurrentTexture after Release = %v, want ErrSurfaceNotConfigured", err)
	}
}

func TestSurfaceReadback(t *testing.T) {
	d := newTestDevice(t)
	s, _ := NewOffscreenSurface(70, 3) // 280-byte rows are padded to 512
	if err := s.Configure(d, bgraConfig); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	img, err := s.Readback()
	if err != nil {
		t.Fatalf("Readback: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 70 || b.Dy() != 3 {
		t.Errorf("image bounds = %v, want 70x3", b)
	}
}

func TestSurfaceReadbackUnsupportedFormat(t *testing.T) {
	d := newTestDevice(t)
	s, _ := NewOffscreenSurface(4, 4)
	cfg := *bgraConfig
	cfg.Format = gputypes.TextureFormatR8Unorm
	if err := s.Configure(d, &cfg); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if _, err := s.Readback(); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Readback() = %v, want ErrUnsupported", err)
	}
}

func TestUnpackRows(t *testing.T) {
	// Two rows of one BGRA pixel each, padded to 8 bytes.
	src := []byte{
		1, 2, 3, 4, 0xEE, 0xEE, 0xEE, 0xEE,
		5, 6, 7, 8, 0xEE, 0xEE, 0xEE, 0xEE,
	}
	tests := []struct {
		name string
		swap bool
		want []byte
	}{
		{"bgra", true, []byte{3, 2, 1, 4, 7, 6, 5, 8}},
		{"rgba", false, []byte{1, 2, 3, 4, 5, 6, 7, 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]byte, 8)
			unpackRows(dst, src, 4, 8, 2, tt.swap)
			if !bytes.Equal(dst, tt.want) {
				t.Errorf("unpackRows() = %v, want %v", dst, tt.want)
			}
		})
	}
}
