package vkr

import (
	vk "github.com/vulkan-go/vulkan"
)

type Framebuffer struct {
	Device        *Device
	VKFramebuffer vk.Framebuffer
}

func (f *Framebuffer) Destroy() {
	vk.DestroyFramebuffer(f.Device.VKDevice, f.VKFramebuffer, nil)
}

// CreateFramebuffer builds one framebuffer over a swapchain color view and
// the shared depth view.
func (d *Device) CreateFramebuffer(renderPass *RenderPass, colorView, depthView *ImageView, extent vk.Extent2D) (*Framebuffer, error) {

	createInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderPass.VKRenderPass,
		AttachmentCount: 2,
		PAttachments:    []vk.ImageView{colorView.VKImageView, depthView.VKImageView},
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}

	var framebuffer vk.Framebuffer

	err := deviceResult("create framebuffer", vk.CreateFramebuffer(d.VKDevice, &createInfo, nil, &framebuffer))
	if err != nil {
		return nil, err
	}

	var ret Framebuffer
	ret.Device = d
	ret.VKFramebuffer = framebuffer

	return &ret, nil

}

// CreateFramebuffers builds one framebuffer per swapchain image, all sharing
// the one depth attachment.
func (d *Device) CreateFramebuffers(renderPass *RenderPass, chain *Swapchain, depth *DepthResources) ([]*Framebuffer, error) {
	ret := make([]*Framebuffer, len(chain.ImageViews))
	for i, view := range chain.ImageViews {
		fb, err := d.CreateFramebuffer(renderPass, view, depth.View, chain.Extent)
		if err != nil {
			for _, done := range ret[:i] {
				done.Destroy()
			}
			return nil, err
		}
		ret[i] = fb
	}
	return ret, nil
}
