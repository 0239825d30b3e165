package native

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/triangle/gpucore"
)

// copyPitchAlignment is the row alignment of texture-to-buffer copies.
const copyPitchAlignment = 256

// Readback copies the surface texture to the CPU and waits for the copy.
// Work submitted earlier on the same queue, such as the last frame, is
// finished first. BGRA8Unorm and RGBA8Unorm surfaces are supported.
func (s *OffscreenSurface) Readback() (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lost {
		return nil, gpucore.ErrSurfaceLost
	}
	if s.texture == nil {
		return nil, gpucore.ErrSurfaceNotConfigured
	}
	swap, err := swapsRedBlue(s.config.Format)
	if err != nil {
		return nil, err
	}

	d, w, h := s.device, s.width, s.height
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	size := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := d.hal.CreateBuffer(&hal.BufferDescriptor{
		Label: d.label + " readback",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create staging buffer: %w", err)
	}
	defer d.hal.DestroyBuffer(staging)

	encoder, err := d.hal.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: d.label + " readback"})
	if err != nil {
		return nil, fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("readback"); err != nil {
		return nil, fmt.Errorf("native: begin encoding: %w", err)
	}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(s.texture, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: s.texture, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	// Back to RenderAttachment for the next frame's pass.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	cb, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("native: end encoding: %w", err)
	}
	if err := d.queue.submitAndWait(cb); err != nil {
		return nil, err
	}

	mapping, err := d.hal.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("native: map staging buffer: %w", err)
	}
	data := unsafe.Slice((*byte)(mapping.Ptr), size)
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	unpackRows(img.Pix, data, int(bytesPerRow), int(alignedBytesPerRow), int(h), swap)
	if err := d.hal.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("native: unmap staging buffer: %w", err)
	}
	return img, nil
}

// swapsRedBlue reports whether texels of format are stored as BGRA.
func swapsRedBlue(format gputypes.TextureFormat) (bool, error) {
	switch format {
	case gputypes.TextureFormatBGRA8Unorm:
		return true, nil
	case gputypes.TextureFormatRGBA8Unorm:
		return false, nil
	default:
		return false, fmt.Errorf("%w: readback of %v", ErrUnsupported, format)
	}
}

// unpackRows copies rows from padded src to tight dst, converting BGRA to
// RGBA when swap is set.
func unpackRows(dst, src []byte, rowBytes, srcPitch, rows int, swap bool) {
	for y := 0; y < rows; y++ {
		d := dst[y*rowBytes : (y+1)*rowBytes]
		copy(d, src[y*srcPitch:y*srcPitch+rowBytes])
		if !swap {
			continue
		}
		for i := 0; i+3 < len(d); i += 4 {
			d[i], d[i+2] = d[i+2], d[i]
		}
	}
}
