//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/debugdraw/cache"
	"github.com/gogpu/debugdraw/gpucore"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	_ "github.com/gogpu/wgpu/hal/vulkan" // registers the Vulkan backend
)

// Device errors.
var (
	// ErrNoAdapter is returned when the backend exposes no adapter.
	ErrNoAdapter = errors.New("wgpu: no GPU adapters found")

	// ErrBackendUnavailable is returned when the requested HAL backend is
	// not compiled in.
	ErrBackendUnavailable = errors.New("wgpu: backend not available")

	// ErrNotHALProvider is returned by NewFromProvider when the provider
	// does not expose HAL types.
	ErrNotHALProvider = errors.New("wgpu: provider does not expose HAL device and queue")

	// ErrDestroyed is returned when a destroyed device is used.
	ErrDestroyed = errors.New("wgpu: device destroyed")

	// ErrForeignObject is returned when an object created by another device
	// is passed in.
	ErrForeignObject = errors.New("wgpu: object belongs to another device")

	// ErrUnknownQueue is returned when a pipeline state is queued on a
	// queue that was not acquired in the current frame.
	ErrUnknownQueue = errors.New("wgpu: unknown render queue")
)

// Defaults used by Config.
const (
	DefaultWidth         = 800
	DefaultHeight        = 600
	DefaultSubmitTimeout = 5 * time.Second

	// DefaultPipelineCacheSize bounds the number of cached render pipelines.
	DefaultPipelineCacheSize = 64

	// DefaultShaderCacheSize bounds the number of cached shader modules.
	DefaultShaderCacheSize = 32
)

// Config describes the render target of a Device.
type Config struct {
	// Width and Height of the offscreen target. Zero selects the default.
	Width, Height uint32

	// Format of the color target. Zero selects BGRA8Unorm.
	Format gputypes.TextureFormat

	// ClearColor is loaded into the color target at the start of a frame.
	ClearColor gputypes.Color

	// SubmitTimeout bounds the wait for frame completion. Zero selects
	// DefaultSubmitTimeout.
	SubmitTimeout time.Duration

	// PipelineCacheSize and ShaderCacheSize bound the device caches. Zero
	// selects the defaults.
	PipelineCacheSize int
	ShaderCacheSize   int
}

func (c Config) withDefaults() Config {
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if c.Format == 0 {
		c.Format = gputypes.TextureFormatBGRA8Unorm
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = DefaultSubmitTimeout
	}
	if c.PipelineCacheSize <= 0 {
		c.PipelineCacheSize = DefaultPipelineCacheSize
	}
	if c.ShaderCacheSize <= 0 {
		c.ShaderCacheSize = DefaultShaderCacheSize
	}
	return c
}

// GPUInfo describes the adapter a Device runs on.
type GPUInfo struct {
	// Name is the adapter name (e.g., "NVIDIA GeForce RTX 3080").
	Name string
	// DeviceType is the adapter type (discrete, integrated, CPU, ...).
	DeviceType gputypes.DeviceType
	// Shared is true for devices obtained from a provider.
	Shared bool
}

// String returns a human-readable description of the GPU.
func (g GPUInfo) String() string {
	if g.Shared {
		return "shared device"
	}
	return fmt.Sprintf("%s (%v)", g.Name, g.DeviceType)
}

// Device is a gpucore.Device backed by a wgpu HAL device.
//
// Device is not safe for concurrent use.
type Device struct {
	cfg      Config
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	external bool
	info     GPUInfo

	frame uint64
	sm    *gpucore.StateMachine

	shaders   *cache.Cache[shaderKey, *Shader]
	pipelines *cache.Cache[uint64, hal.RenderPipeline]

	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	target        renderTarget

	queues     map[string]gpucore.RenderQueueID
	queueNames []string
	sorted     map[gpucore.RenderQueueID]bool
	pending    []queuedDraw
	stalled    []*submission

	nextShaderID uint64
	destroyed    bool
}

var (
	_ gpucore.Device          = (*Device)(nil)
	_ gpucore.Allocator       = (*Device)(nil)
	_ gpucore.PipelineBuilder = (*Device)(nil)
)

// Open opens the first discrete or integrated GPU found by the Vulkan
// backend.
func Open(cfg Config) (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan", ErrBackendUnavailable)
	}
	return openBackend(backend, cfg)
}

// OpenNoop opens a device on the no-op HAL backend. Every call succeeds and
// nothing is drawn, which makes it suitable for tests and headless runs.
func OpenNoop(cfg Config) (*Device, error) {
	return openBackend(&noop.API{}, cfg)
}

func openBackend(backend hal.Backend, cfg Config) (*Device, error) {
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	d := newDevice(openDev.Device, openDev.Queue, cfg)
	d.instance = instance
	d.info = GPUInfo{Name: selected.Info.Name, DeviceType: selected.Info.DeviceType}
	if err := d.init(); err != nil {
		d.Destroy()
		return nil, err
	}
	slogger().Info("wgpu: device opened", "gpu", d.info.String())
	return d, nil
}

// NewFromProvider creates a Device on a GPU device shared by provider.
// The provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider, cfg Config) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	if provider == nil {
		return nil, ErrNotHALProvider
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNotHALProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNotHALProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNotHALProvider)
	}

	d := newDevice(device, queue, cfg)
	d.external = true
	d.info = GPUInfo{Shared: true}
	if err := d.init(); err != nil {
		d.Destroy()
		return nil, err
	}
	slogger().Info("wgpu: using shared GPU device")
	return d, nil
}

func newDevice(device hal.Device, queue hal.Queue, cfg Config) *Device {
	cfg = cfg.withDefaults()
	d := &Device{
		cfg:    cfg,
		device: device,
		queue:  queue,
		queues: make(map[string]gpucore.RenderQueueID),
		sorted: make(map[gpucore.RenderQueueID]bool),
	}
	d.sm = gpucore.NewStateMachine(d)
	d.shaders = cache.New[shaderKey, *Shader](cfg.ShaderCacheSize).OnEvict(func(_ shaderKey, s *Shader) {
		s.release()
	})
	d.pipelines = cache.New[uint64, hal.RenderPipeline](cfg.PipelineCacheSize).OnEvict(func(_ uint64, p hal.RenderPipeline) {
		d.device.DestroyRenderPipeline(p)
	})
	return d
}

// init creates the resources shared by every pipeline.
func (d *Device) init() error {
	uniformLayout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "debugdraw_frame_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group layout: %w", err)
	}
	d.uniformLayout = uniformLayout

	pipeLayout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "debugdraw_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{d.uniformLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	d.pipeLayout = pipeLayout

	if err := d.target.ensure(d.device, d.cfg.Width, d.cfg.Height, d.cfg.Format); err != nil {
		return fmt.Errorf("wgpu: %w", err)
	}
	return nil
}

// SetLogger sets the logger used by the wgpu backend.
func (d *Device) SetLogger(l *slog.Logger) {
	setLogger(l)
}

// Info returns the adapter description.
func (d *Device) Info() GPUInfo { return d.info }

// Config returns the effective configuration.
func (d *Device) Config() Config { return d.cfg }

// FrameCounter returns the current frame index.
func (d *Device) FrameCounter() uint64 { return d.frame }

// OutputResolution returns the size of the offscreen target.
func (d *Device) OutputResolution() (width, height uint32) {
	return d.cfg.Width, d.cfg.Height
}

// Resize changes the size of the offscreen target. The target is
// re-created by the next EndFrame.
func (d *Device) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	d.cfg.Width, d.cfg.Height = width, height
}

// StateMachine returns the device state machine.
func (d *Device) StateMachine() *gpucore.StateMachine { return d.sm }

// ShaderLanguage returns gpucore.ShaderLanguageWGSL.
func (d *Device) ShaderLanguage() gpucore.ShaderLanguage {
	return gpucore.ShaderLanguageWGSL
}

// PipelineCacheStats returns statistics of the render pipeline cache.
func (d *Device) PipelineCacheStats() cache.Stats { return d.pipelines.Stats() }

// ShaderCacheStats returns statistics of the shader module cache.
func (d *Device) ShaderCacheStats() cache.Stats { return d.shaders.Stats() }

// AcquireRenderQueue returns the ID of the named queue for this frame.
// Queues are drawn in the order they are first acquired.
func (d *Device) AcquireRenderQueue(sorted bool, name string) gpucore.RenderQueueID {
	id, ok := d.queues[name]
	if !ok {
		d.queueNames = append(d.queueNames, name)
		id = gpucore.RenderQueueID(len(d.queueNames)) //nolint:gosec // G115: queue count is small
		d.queues[name] = id
	}
	if sorted {
		d.sorted[id] = true
	}
	return id
}

// Destroy releases every device resource. Buffers handed out by
// CreateBuffer belong to the caller. A shared device is left open.
// Calling Destroy more than once is safe.
func (d *Device) Destroy() {
	if d.destroyed {
		return
	}
	d.destroyed = true
	d.pending = nil
	if len(d.stalled) > 0 {
		if err := d.device.WaitIdle(); err != nil {
			slogger().Warn("wgpu: wait idle before destroy", "err", err)
		}
		for _, sub := range d.stalled {
			sub.release(d.device)
		}
		d.stalled = nil
	}

	d.pipelines.Clear()
	d.shaders.Clear()
	d.target.destroy(d.device)
	if d.pipeLayout != nil {
		d.device.DestroyPipelineLayout(d.pipeLayout)
		d.pipeLayout = nil
	}
	if d.uniformLayout != nil {
		d.device.DestroyBindGroupLayout(d.uniformLayout)
		d.uniformLayout = nil
	}
	if !d.external && d.device != nil {
		d.device.Destroy()
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	slogger().Debug("wgpu: device destroyed")
}
