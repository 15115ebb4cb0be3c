/*
Package vkr manages the device-resource and frame-lifecycle plumbing required
to drive a double- or triple-buffered Vulkan rendering loop.

It owns the chain of handles between the Vulkan instance and a presented
frame: physical-device selection, the logical device and its queue(s), the
swapchain and its image views, depth/render-target resources, a fixed-size
ring of per-frame command buffers and synchronization objects, and typed GPU
memory allocation for buffers and images. Every handle is destroyed in
dependency-safe order exactly once.

The package does not build pipeline state objects or manage a scene; those
are the application's job. It exposes the active command buffer and back
buffer each frame so the application can record whatever it likes between
FrameBegin and FrameEnd.

A minimal frame loop looks like:

	ctx, err := vkr.NewContext(vkr.Config{
		AppName: "demo",
		Window:  window,
	})
	...
	for !window.ShouldClose() {
		glfw.PollEvents()
		if err := ctx.FrameBegin(); err != nil {
			if errors.Is(err, vkr.ErrSwapchainOutOfDate) {
				ctx.Resize()
				continue
			}
			...
		}
		ctx.BeginRenderPass()
		// record draw calls on ctx.CurrentCommandBuffer()
		ctx.EndRenderPass()
		ctx.FrameEnd()
		ctx.FramePresent()
	}
	ctx.Destroy()

The Context is not safe for concurrent use; a single goroutine drives the
frame loop. Concurrency exists only between the CPU and the GPU, mediated by
the fences and semaphores of the frame ring.
*/
package vkr
