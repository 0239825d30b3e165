package triangle

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/triangle/gpucore"
	"github.com/gogpu/triangle/shader"
)

// ClearColor is the dark green the surface is cleared to before the draw.
var ClearColor = gputypes.Color{R: 0, G: 0.05, B: 0, A: 1}

var errNoPreferredFormat = errors.New("provider reports no preferred format")

// Stats reports what a Renderer has done so far.
type Stats struct {
	// Frames is the number of frames submitted.
	Frames uint64

	// PipelineBuilds is the number of render pipelines created. It stays at
	// one for the lifetime of a session.
	PipelineBuilds uint64

	// Adapter describes the adapter of the current session.
	Adapter gpucore.AdapterInfo

	// Format is the color format the pipeline was built for.
	Format gputypes.TextureFormat
}

// Renderer builds the triangle pipeline once and draws it into a surface
// on every RenderFrame call.
//
// A Renderer is bound to the provider of its first successful RenderFrame
// call. RenderFrame calls are serialized; a second call waits until the
// previous frame has been submitted.
type Renderer struct {
	mu      sync.Mutex
	opts    rendererOptions
	session *session
	stats   Stats
	closed  bool
}

// session holds the GPU objects created by the setup sequence.
type session struct {
	provider gpucore.AdapterProvider
	device   gpucore.Device
	format   gputypes.TextureFormat
	program  *shader.Program
	module   gpucore.ShaderModuleID
	layout   gpucore.PipelineLayoutID
	pipeline gpucore.RenderPipelineID
}

// NewRenderer creates a renderer. No GPU object is created until the first
// RenderFrame call.
func NewRenderer(opts ...Option) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Renderer{opts: o}
}

// RenderFrame draws one frame: on the first call it acquires an adapter and
// device from provider and builds the pipeline, then it configures surface,
// acquires its current frame, clears it to ClearColor, draws the triangle
// and submits the commands. It does not wait for the GPU.
//
// Errors are *StepError values matching one of the Err* kinds.
func (r *Renderer) RenderFrame(provider gpucore.AdapterProvider, surface gpucore.Surface) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRendererClosed
	}
	if r.session == nil {
		s, err := r.setup(provider)
		if err != nil {
			Logger().Warn("triangle: setup failed", "err", err)
			return err
		}
		r.session = s
		r.stats.PipelineBuilds++
		r.stats.Format = s.format
	}
	if err := r.frame(r.session, provider, surface); err != nil {
		Logger().Warn("triangle: frame failed", "err", err)
		return err
	}
	r.stats.Frames++
	return nil
}

// setup runs the one-time sequence: adapter, device, format, shader,
// pipeline. Objects created before a failing step are released.
func (r *Renderer) setup(provider gpucore.AdapterProvider) (_ *session, err error) {
	log := Logger()
	label := r.opts.label

	log.Debug("triangle: requesting adapter")
	adapter, err := provider.RequestAdapter()
	if err != nil {
		return nil, stepError(StepRequestAdapter, ErrNoAdapter, err)
	}
	if adapter == nil {
		return nil, stepError(StepRequestAdapter, ErrNoAdapter, nil)
	}
	info := adapter.Info()
	log.Info("triangle: adapter selected", "name", info.Name, "backend", info.Backend, "type", info.DeviceType)

	log.Debug("triangle: requesting device")
	device, err := adapter.RequestDevice(label + " device")
	if err != nil {
		return nil, stepError(StepRequestDevice, ErrDeviceCreation, err)
	}
	if device == nil {
		return nil, stepError(StepRequestDevice, ErrDeviceCreation, fmt.Errorf("adapter %q returned no device", info.Name))
	}

	s := &session{provider: provider, device: device}
	defer func() {
		if err != nil {
			s.release()
		}
	}()

	s.format = provider.PreferredFormat()
	if s.format == gputypes.TextureFormatUndefined {
		return nil, stepError(StepPreferredFormat, ErrPipelineCreation, errNoPreferredFormat)
	}
	log.Debug("triangle: preferred format", "format", s.format)

	s.program = r.opts.program
	if s.program == nil {
		if s.program, err = shader.Default(); err != nil {
			return nil, stepError(StepCompileShader, ErrShaderCompile, err)
		}
	}
	s.module, err = device.CreateShaderModule(&gpucore.ShaderModuleDescriptor{
		Label: label + " shader",
		WGSL:  s.program.Source(),
		SPIRV: s.program.SPIRV(),
	})
	if err != nil {
		return nil, stepError(StepCompileShader, ErrShaderCompile, err)
	}

	s.layout, err = device.CreatePipelineLayout(&gpucore.PipelineLayoutDescriptor{
		Label:            label + " pipeline layout",
		BindGroupLayouts: s.program.Layout().Groups(),
	})
	if err != nil {
		return nil, stepError(StepCreatePipeline, ErrPipelineCreation, err)
	}

	s.pipeline, err = device.CreateRenderPipeline(&gpucore.RenderPipelineDescriptor{
		Label:  label + " pipeline",
		Layout: s.layout,
		Vertex: gpucore.ProgrammableStage{
			Module:     s.module,
			EntryPoint: s.program.VertexEntryPoint(),
		},
		Fragment: &gpucore.FragmentStage{
			ProgrammableStage: gpucore.ProgrammableStage{
				Module:     s.module,
				EntryPoint: s.program.FragmentEntryPoint(),
			},
			Targets: []gputypes.ColorTargetState{
				{
					Format:    s.format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
	})
	if err != nil {
		return nil, stepError(StepCreatePipeline, ErrPipelineCreation, err)
	}
	log.Info("triangle: pipeline created", "format", s.format,
		"vertex", s.program.VertexEntryPoint(), "fragment", s.program.FragmentEntryPoint())

	attachLogger(provider)
	r.stats.Adapter = info
	return s, nil
}

// frame runs the per-frame sequence. Every step consumes the handle of the
// one before it.
func (r *Renderer) frame(s *session, provider gpucore.AdapterProvider, surface gpucore.Surface) error {
	log := Logger()
	label := r.opts.label

	if f := provider.PreferredFormat(); f != s.format {
		return stepError(StepCheckFormat, ErrPipelineCreation,
			fmt.Errorf("preferred format %v differs from pipeline format %v", f, s.format))
	}

	log.Debug("triangle: configuring surface", "format", s.format)
	err := surface.Configure(s.device, &gpucore.SurfaceConfiguration{
		Format:    s.format,
		Usage:     gputypes.TextureUsageRenderAttachment,
		AlphaMode: gpucore.AlphaModePremultiplied,
	})
	if err != nil {
		return stepError(StepConfigureSurface, ErrSurfaceUnavailable, err)
	}

	frame, err := surface.GetCurrentTexture()
	if err != nil {
		return stepError(StepAcquireFrame, ErrSurfaceUnavailable, err)
	}
	// Undefined means the surface does not report the frame's format.
	if frame.Format != gputypes.TextureFormatUndefined && frame.Format != s.format {
		return stepError(StepCheckFormat, ErrPipelineCreation,
			fmt.Errorf("frame format %v differs from pipeline format %v", frame.Format, s.format))
	}
	log.Debug("triangle: frame acquired", "width", frame.Width, "height", frame.Height)

	enc, err := s.device.CreateCommandEncoder(label + " encoder")
	if err != nil {
		return stepError(StepEncode, ErrSubmit, err)
	}
	// No-op once Finish succeeded.
	defer enc.Discard()
	pass, err := enc.BeginRenderPass(&gpucore.RenderPassDescriptor{
		Label: label + " pass",
		ColorAttachments: []gpucore.ColorAttachment{
			{
				View:       frame.View,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: ClearColor,
			},
		},
	})
	if err != nil {
		return stepError(StepEncode, ErrSubmit, err)
	}
	pass.SetPipeline(s.pipeline)
	pass.Draw(shader.VertexCount, 1, 0, 0)
	if err := pass.End(); err != nil {
		return stepError(StepEncode, ErrSubmit, err)
	}
	cmd, err := enc.Finish()
	if err != nil {
		return stepError(StepEncode, ErrSubmit, err)
	}

	if err := s.device.Queue().Submit(cmd); err != nil {
		return stepError(StepSubmit, ErrSubmit, err)
	}
	log.Debug("triangle: frame submitted", "frame", r.stats.Frames+1)

	if p, ok := surface.(gpucore.Presenter); ok {
		if err := p.Present(); err != nil {
			return stepError(StepPresent, ErrSurfaceUnavailable, err)
		}
	}
	return nil
}

// Stats returns a snapshot of the renderer's counters.
func (r *Renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Close waits for the GPU to finish submitted frames, then releases the
// pipeline, layout, shader module and device in reverse creation order.
// Close is idempotent.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	if r.session != nil {
		detachLogger(r.session.provider)
		r.session.release()
		r.session = nil
	}
}

func (s *session) release() {
	if err := s.device.WaitIdle(); err != nil {
		Logger().Warn("triangle: wait for GPU before release", "err", err)
	}
	if s.pipeline != gpucore.InvalidID {
		s.device.DestroyRenderPipeline(s.pipeline)
	}
	if s.layout != gpucore.InvalidID {
		s.device.DestroyPipelineLayout(s.layout)
	}
	if s.module != gpucore.InvalidID {
		s.device.DestroyShaderModule(s.module)
	}
	s.device.Destroy()
	Logger().Debug("triangle: session released")
}

// RenderFrame renders one frame with a fresh Renderer and returns it. The
// device stays open so the submitted frame remains valid until it is
// presented or read back; the caller must Close the Renderer. On error the
// Renderer is closed and nil is returned.
func RenderFrame(provider gpucore.AdapterProvider, surface gpucore.Surface) (*Renderer, error) {
	r := NewRenderer()
	if err := r.RenderFrame(provider, surface); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}
