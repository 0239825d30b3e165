// Package triangle renders a single colored triangle with a GPU.
//
// # Overview
//
// The package sequences GPU object creation against an explicit, stateful
// graphics API: it acquires a logical device from an adapter, builds one
// render pipeline from the [shader] program, configures a presentation
// surface, and records and submits one render pass that clears the surface
// and draws three vertices.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/triangle"
//	    "github.com/gogpu/triangle/backend/native"
//	)
//
//	provider := native.NewProvider(native.DefaultConfig())
//	defer provider.Close()
//	surface, err := native.NewOffscreenSurface(640, 480)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	r := triangle.NewRenderer()
//	defer r.Close()
//	if err := r.RenderFrame(provider, surface); err != nil {
//	    if triangle.IsEnvironmentError(err) {
//	        log.Fatalf("no usable GPU: %v", err)
//	    }
//	    log.Fatal(err)
//	}
//
// # Architecture
//
// The module is organized into:
//   - triangle: [Renderer], errors, options, logging
//   - gpucore: the contracts the renderer needs from adapters, devices and surfaces
//   - shader: the vertex/fragment program, compiled with gogpu/naga
//   - backend: registry of gpucore implementations
//   - backend/native: gogpu/wgpu HAL implementation with an offscreen surface
//
// # Errors
//
// Every failure is terminal for the call that produced it and is reported as
// a [*StepError] naming the failed step. The error kinds [ErrNoAdapter],
// [ErrDeviceCreation], [ErrShaderCompile], [ErrPipelineCreation],
// [ErrSurfaceUnavailable] and [ErrSubmit] match with errors.Is.
//
// # Logging
//
// The package is silent by default. Use [SetLogger] to enable structured
// logging via log/slog.
package triangle
