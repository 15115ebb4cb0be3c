package vkr

import (
	vk "github.com/vulkan-go/vulkan"
)

// DepthResources is the depth attachment shared by every framebuffer: a
// device-local image, its memory and a depth-aspect view. It is sized to the
// swapchain extent and rebuilt with it on resize.
type DepthResources struct {
	Image  *BoundImage
	View   *ImageView
	Format vk.Format
}

// FindDepthFormat picks the first depth format the device supports as an
// optimal-tiling depth/stencil attachment.
func (p *PhysicalDevice) FindDepthFormat() (vk.Format, error) {
	return p.FindSupportedFormat(
		[]vk.Format{vk.FormatD32Sfloat, vk.FormatD32SfloatS8Uint, vk.FormatD24UnormS8Uint},
		vk.ImageTilingOptimal,
		vk.FormatFeatureDepthStencilAttachmentBit)
}

func depthAspect(format vk.Format) vk.ImageAspectFlags {
	aspect := vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	if format == vk.FormatD32SfloatS8Uint || format == vk.FormatD24UnormS8Uint {
		aspect |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
	}
	return aspect
}

// CreateDepthResources builds the depth attachment for the given extent and
// transitions it into the depth/stencil layout with a one-shot command
// buffer on the pool's queue family.
func (d *Device) CreateDepthResources(extent vk.Extent2D, pool *CommandPool) (*DepthResources, error) {
	format, err := d.PhysicalDevice.FindDepthFormat()
	if err != nil {
		return nil, &ResourceCreationError{Kind: "depth image", Reason: err.Error()}
	}

	img, err := d.CreateBoundImage(extent, format, vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return nil, err
	}

	view, err := img.CreateImageViewWithAspectMask(depthAspect(format))
	if err != nil {
		img.Destroy()
		return nil, err
	}

	dr := &DepthResources{Image: img, View: view, Format: format}

	cb, err := pool.AllocateBuffer()
	if err != nil {
		dr.Destroy()
		return nil, err
	}
	defer pool.FreeBuffer(cb)

	if err := cb.BeginOneTime(); err != nil {
		dr.Destroy()
		return nil, err
	}
	cb.CmdTransitionImageLayout(&img.Image, depthAspect(format),
		vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal)
	if err := cb.End(); err != nil {
		dr.Destroy()
		return nil, err
	}

	if err := d.GraphicsQueue.SubmitWaitIdle(cb); err != nil {
		dr.Destroy()
		return nil, err
	}

	return dr, nil
}

// Destroy releases the view, then the image and its memory.
func (r *DepthResources) Destroy() {
	r.View.Destroy()
	r.Image.Destroy()
}
