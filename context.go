package vkr

import (
	"fmt"
	"log"
	"time"

	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

const (
	// DefaultFramesInFlight is the number of frame slots when the Config
	// does not say otherwise. Two keeps the CPU one frame ahead of the GPU.
	DefaultFramesInFlight = 2

	// DefaultFenceTimeout bounds the per-frame fence wait. A healthy GPU
	// retires a frame in milliseconds; hitting this means the device hung.
	DefaultFenceTimeout = 5 * time.Second
)

// Config describes everything NewContext needs. The zero value of every
// optional field selects a sensible default.
type Config struct {
	// AppName and AppVersion identify the application to the driver.
	AppName    string
	AppVersion Version
	// EngineName and EngineVersion identify the engine, if any.
	EngineName    string
	EngineVersion Version

	// Window is the GLFW window to present into. Its required instance
	// extensions are enabled and its surface is created automatically.
	Window *glfw.Window

	// FramesInFlight is the size of the frame ring. Zero means
	// DefaultFramesInFlight.
	FramesInFlight int

	// FenceTimeout bounds the wait for a frame slot's fence. Zero means
	// DefaultFenceTimeout.
	FenceTimeout time.Duration

	// EnableValidation turns on the Khronos validation layer and routes its
	// messages through DebugFunc, filtered by the two filters. The zero
	// filters pass nothing, so set them when enabling validation.
	EnableValidation bool
	DebugSeverities  DebugSeverityFilter
	DebugCategories  DebugCategoryFilter
	DebugFunc        DebugFunc

	// DeviceExtensions are required device extensions beyond VK_KHR_swapchain.
	DeviceExtensions []string

	// RequiredFeatures narrows physical-device selection and is enabled on
	// the logical device.
	RequiredFeatures []Feature

	// ClearColor is the color attachment clear value. Zero value clears to
	// opaque black.
	ClearColor [4]float32
}

// Context owns the full chain from instance to frame ring and drives the
// frame lifecycle. It is not safe for concurrent use.
type Context struct {
	Instance  *Instance
	VKSurface vk.Surface

	Selection *DeviceSelection
	Device    *Device

	Swapchain    *Swapchain
	Depth        *DepthResources
	RenderPass   *RenderPass
	Framebuffers []*Framebuffer

	Ring *FrameRing
	loop *frameLoop

	window     *glfw.Window
	clearColor [4]float32
}

// NewContext builds the device stack: instance (with validation if asked),
// surface, physical-device selection, logical device and queues, swapchain,
// depth resources, render pass, framebuffers and the frame ring.
func NewContext(config Config) (*Context, error) {
	if config.Window == nil {
		return nil, fmt.Errorf("config needs a window")
	}
	if config.FramesInFlight == 0 {
		config.FramesInFlight = DefaultFramesInFlight
	}
	if config.FenceTimeout == 0 {
		config.FenceTimeout = DefaultFenceTimeout
	}

	app := &App{
		Name:          config.AppName,
		EngineName:    config.EngineName,
		Version:       config.AppVersion,
		EngineVersion: config.EngineVersion,
	}

	for _, ext := range config.Window.GetRequiredInstanceExtensions() {
		app.EnableExtension(ext)
	}
	if config.EnableValidation {
		if err := app.EnableValidation(); err != nil {
			return nil, err
		}
	}

	instance, err := app.CreateInstance()
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		Instance:   instance,
		window:     config.Window,
		clearColor: config.ClearColor,
	}

	if config.EnableValidation {
		if err := instance.SetDebugFunc(config.DebugSeverities, config.DebugCategories, config.DebugFunc); err != nil {
			ctx.Destroy()
			return nil, err
		}
	}

	surfacePtr, err := config.Window.CreateWindowSurface(instance.VKInstance, nil)
	if err != nil {
		ctx.Destroy()
		return nil, err
	}
	ctx.VKSurface = vk.SurfaceFromPointer(surfacePtr)

	selection, err := SelectPhysicalDevice(instance, ctx.VKSurface, DeviceRequirements{
		Extensions: append([]string{"VK_KHR_swapchain"}, config.DeviceExtensions...),
		Features:   config.RequiredFeatures,
	})
	if err != nil {
		ctx.Destroy()
		return nil, err
	}
	ctx.Selection = selection

	device, err := selection.CreateDevice()
	if err != nil {
		ctx.Destroy()
		return nil, err
	}
	ctx.Device = device

	ring, err := device.CreateFrameRing(config.FramesInFlight, config.FenceTimeout)
	if err != nil {
		ctx.Destroy()
		return nil, err
	}
	ctx.Ring = ring

	if err := ctx.buildSwapchainStack(nil); err != nil {
		ctx.Destroy()
		return nil, err
	}

	ctx.loop = newFrameLoop(ring, &chainPresenter{ring: ring, chain: ctx.Swapchain})

	return ctx, nil
}

func (c *Context) screenExtent() vk.Extent2D {
	width, height := c.window.GetFramebufferSize()
	return vk.Extent2D{Width: uint32(width), Height: uint32(height)}
}

// buildSwapchainStack creates the swapchain and everything sized to it. The
// old chain, when given, is passed to the driver as the recreation hint; the
// caller destroys it afterwards.
func (c *Context) buildSwapchainStack(old *Swapchain) error {
	chain, err := c.Device.CreateSwapchain(c.VKSurface, c.Device.GraphicsQueue, c.Device.PresentQueue, &CreateSwapchainOptions{
		ActualSize:   c.screenExtent(),
		OldSwapchain: old,
		// One image per frame slot at least, or slots would contend for
		// back buffers.
		DesiredNumSwapchainImages: c.Ring.Frames(),
	})
	if err != nil {
		return err
	}

	depth, err := c.Device.CreateDepthResources(chain.Extent, c.Ring.Pool)
	if err != nil {
		chain.Destroy()
		return err
	}

	renderPass, err := c.Device.CreateRenderPass(chain.Format, depth.Format)
	if err != nil {
		depth.Destroy()
		chain.Destroy()
		return err
	}

	framebuffers, err := c.Device.CreateFramebuffers(renderPass, chain, depth)
	if err != nil {
		renderPass.Destroy()
		depth.Destroy()
		chain.Destroy()
		return err
	}

	c.Swapchain = chain
	c.Depth = depth
	c.RenderPass = renderPass
	c.Framebuffers = framebuffers
	return nil
}

func (c *Context) destroySwapchainStack() {
	for _, fb := range c.Framebuffers {
		fb.Destroy()
	}
	c.Framebuffers = nil
	if c.RenderPass != nil {
		c.RenderPass.Destroy()
		c.RenderPass = nil
	}
	if c.Depth != nil {
		c.Depth.Destroy()
		c.Depth = nil
	}
}

// Resize rebuilds the swapchain and everything sized to it after the surface
// changed. The device is drained first, so no in-flight frame references the
// old resources; the new chain is created before the old one is destroyed so
// the driver can carry state over. A zero-sized framebuffer (minimized
// window) leaves the old chain in place; callers retry once the window has
// area again. The ring and its cursor survive, so frame numbering continues
// where it left off.
func (c *Context) Resize() error {
	extent := c.screenExtent()
	if extent.Width == 0 || extent.Height == 0 {
		return nil
	}

	if err := c.Device.PresentQueue.WaitIdle(); err != nil {
		return err
	}
	if err := c.Device.GraphicsQueue.WaitIdle(); err != nil {
		return err
	}
	if err := c.Device.WaitIdle(); err != nil {
		return err
	}

	// After a failed Resize there is no swapchain at all; a retry builds a
	// fresh stack with no old chain to hand over or destroy.
	old := c.Swapchain
	c.Swapchain = nil
	c.destroySwapchainStack()

	if err := c.buildSwapchainStack(old); err != nil {
		old.Destroy()
		return &SwapchainError{Op: "recreate", Err: err}
	}
	old.Destroy()

	c.loop.chain = &chainPresenter{ring: c.Ring, chain: c.Swapchain}
	return nil
}

// FrameBegin waits for the current frame slot, acquires a back buffer and
// opens the slot's command buffer for recording. When it reports
// ErrSwapchainOutOfDate, call Resize and retry; nothing was recorded.
func (c *Context) FrameBegin() error {
	return c.loop.begin()
}

// FrameEnd closes the command buffer and submits it to the graphics queue.
func (c *Context) FrameEnd() error {
	return c.loop.end()
}

// FramePresent queues the back buffer for presentation and advances to the
// next frame slot. ErrSwapchainOutOfDate here still advances the frame; call
// Resize before the next FrameBegin.
func (c *Context) FramePresent() error {
	return c.loop.present()
}

// CurrentCommandBuffer is the command buffer of the frame being recorded.
// Valid between FrameBegin and FrameEnd.
func (c *Context) CurrentCommandBuffer() *CommandBuffer {
	return c.Ring.Slots[c.loop.index].CommandBuffer
}

// BackBufferIndex is the swapchain image index acquired by FrameBegin.
func (c *Context) BackBufferIndex() int {
	return c.loop.backBuffer
}

// FrameIndex is the frame slot the loop is on.
func (c *Context) FrameIndex() int {
	return c.loop.index
}

// Extent is the current swapchain extent.
func (c *Context) Extent() vk.Extent2D {
	return c.Swapchain.Extent
}

// SetClearColor changes the color clear value used by BeginRenderPass.
func (c *Context) SetClearColor(color [4]float32) {
	c.clearColor = color
}

// BeginRenderPass starts the context's render pass on the current command
// buffer, targeting the acquired back buffer and clearing both attachments.
func (c *Context) BeginRenderPass() {
	var clearColor vk.ClearValue
	clearColor.SetColor(c.clearColor[:])
	var clearDepth vk.ClearValue
	clearDepth.SetDepthStencil(1.0, 0)

	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  c.RenderPass.VKRenderPass,
		Framebuffer: c.Framebuffers[c.loop.backBuffer].VKFramebuffer,
		RenderArea: vk.Rect2D{
			Extent: c.Swapchain.Extent,
		},
		ClearValueCount: 2,
		PClearValues:    []vk.ClearValue{clearColor, clearDepth},
	}

	vk.CmdBeginRenderPass(c.CurrentCommandBuffer().VK(), &beginInfo, vk.SubpassContentsInline)
}

// EndRenderPass ends the render pass on the current command buffer.
func (c *Context) EndRenderPass() {
	vk.CmdEndRenderPass(c.CurrentCommandBuffer().VK())
}

// CreateBuffer creates a bound buffer of the given kind filled with data.
// Device-local kinds are filled through a staging copy on the ring's pool.
func (c *Context) CreateBuffer(data []byte, kind BufferKind) (*BoundBuffer, error) {
	return c.Device.CreateBoundBufferWithData(data, kind, c.Ring.Pool)
}

// CreateTexture uploads RGBA pixels as a sampled device-local texture.
func (c *Context) CreateTexture(pixels []byte, width, height int) (*Texture, error) {
	anisotropy := false
	for _, f := range c.Selection.Requirements.Features {
		if f == FeatureSamplerAnisotropy {
			anisotropy = true
		}
	}
	return c.Device.CreateTextureFromRGBA(pixels, width, height, c.Ring.Pool, anisotropy)
}

// Destroy drains the device and tears everything down in reverse dependency
// order. Safe to call on a partially constructed context.
func (c *Context) Destroy() {
	if c.Device != nil {
		if err := c.Device.WaitIdle(); err != nil {
			log.Printf("wait idle before teardown: %v", err)
		}
	}

	if c.Ring != nil {
		c.Ring.Destroy()
		c.Ring = nil
	}

	c.destroySwapchainStack()
	if c.Swapchain != nil {
		c.Swapchain.Destroy()
		c.Swapchain = nil
	}

	if c.Device != nil {
		c.Device.Destroy()
		c.Device = nil
	}

	if c.VKSurface != vk.NullSurface {
		vk.DestroySurface(c.Instance.VKInstance, c.VKSurface, nil)
		c.VKSurface = vk.NullSurface
	}

	if c.Instance != nil {
		c.Instance.Destroy()
		c.Instance = nil
	}
}
