package vkr

import (
	vk "github.com/vulkan-go/vulkan"
)

// ChooseSurfaceFormat picks the color format and color space for the
// swapchain from what the surface reports. A single entry with an undefined
// format means the surface has no preference and the standard 8-bit BGRA
// sRGB pair is used; otherwise that exact pair is preferred when present,
// and the first reported entry is the fallback. Entries must be dereffed.
func ChooseSurfaceFormat(formats []vk.SurfaceFormat) (vk.Format, vk.ColorSpace) {
	if len(formats) == 1 && formats[0].Format == vk.FormatUndefined {
		return vk.FormatB8g8r8a8Unorm, vk.ColorSpaceSrgbNonlinear
	}
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Unorm && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f.Format, f.ColorSpace
		}
	}
	return formats[0].Format, formats[0].ColorSpace
}

// ChoosePresentMode prefers mailbox for its low latency without tearing and
// falls back to FIFO, which every conformant device supports.
func ChoosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, m := range modes {
		if m == vk.PresentModeMailbox {
			return m
		}
	}
	return vk.PresentModeFifo
}

// ChooseExtent resolves the swapchain extent from the surface capabilities.
// A current extent of MaxUint32 means the surface defers to the swapchain,
// in which case the caller's hint is clamped to the supported range.
func ChooseExtent(caps vk.SurfaceCapabilities, hint vk.Extent2D) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clampUint32(hint.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clampUint32(hint.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// ChooseImageCount resolves how many images to ask the swapchain for: one
// more than the surface minimum so acquisition never serializes on the
// presentation engine, raised to the requested count (the frame ring needs at
// least one image per slot), and capped by the surface maximum when it has
// one.
func ChooseImageCount(caps vk.SurfaceCapabilities, requested int) int {
	count := int(caps.MinImageCount) + 1
	if requested > count {
		count = requested
	}
	if caps.MaxImageCount > 0 && count > int(caps.MaxImageCount) {
		count = int(caps.MaxImageCount)
	}
	return count
}

func clampUint32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Swapchain owns the presentable images for a surface, together with one
// image view per image. The images belong to the swapchain and are not
// destroyed individually.
type Swapchain struct {
	Extent      vk.Extent2D
	Format      vk.Format
	ColorSpace  vk.ColorSpace
	Device      *Device
	VKSwapchain vk.Swapchain
	Images      []*Image
	ImageViews  []*ImageView
}

// Destroy releases the image views and the swapchain handle. A nil receiver
// is a no-op, so teardown paths that may run before a chain exists (or after
// a failed recreation) need no guard.
func (s *Swapchain) Destroy() {
	if s == nil {
		return
	}
	for _, v := range s.ImageViews {
		v.Destroy()
	}
	s.ImageViews = nil
	vk.DestroySwapchain(s.Device.VKDevice, s.VKSwapchain, nil)
}

func (s *Swapchain) getImages() ([]*Image, error) {
	var imageCount uint32
	err := deviceResult("get swapchain images", vk.GetSwapchainImages(s.Device.VKDevice, s.VKSwapchain, &imageCount, nil))
	if err != nil {
		return nil, err
	}

	swapchainImages := make([]vk.Image, imageCount)
	err = deviceResult("get swapchain images", vk.GetSwapchainImages(s.Device.VKDevice, s.VKSwapchain, &imageCount, swapchainImages))
	if err != nil {
		return nil, err
	}

	ret := make([]*Image, imageCount)
	for i := range swapchainImages {
		ret[i] = &Image{}
		ret[i].Device = s.Device
		ret[i].VKImage = swapchainImages[i]
		ret[i].VKFormat = s.Format
	}

	return ret, nil
}

// AcquireNextImage asks the presentation engine for the next back buffer,
// signaling the semaphore when the image is actually ready for rendering.
// An out-of-date or suboptimal result is reported as ErrSwapchainOutOfDate.
func (s *Swapchain) AcquireNextImage(semaphore vk.Semaphore) (int, error) {
	var index uint32
	ret := vk.AcquireNextImage(s.Device.VKDevice, s.VKSwapchain, vk.MaxUint64, semaphore, vk.NullFence, &index)
	if err := swapchainResult("acquire", ret); err != nil {
		return 0, err
	}
	return int(index), nil
}

// Present hands the back buffer at index to the presentation engine once the
// semaphore signals, i.e. once rendering to it has finished.
func (s *Swapchain) Present(queue *Queue, semaphore vk.Semaphore, index int) error {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{semaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{s.VKSwapchain},
		PImageIndices:      []uint32{uint32(index)},
	}
	return swapchainResult("present", vk.QueuePresent(queue.VKQueue, &presentInfo))
}

type CreateSwapchainOptions struct {
	// OldSwapchain, when set, is handed to the driver so in-flight frames on
	// it can complete while the new chain is built. The caller still owns
	// and destroys it.
	OldSwapchain *Swapchain
	// ActualSize is the extent hint used when the surface defers sizing to
	// the swapchain.
	ActualSize vk.Extent2D
	// DesiredNumSwapchainImages requests a minimum image count; zero means
	// one more than the surface minimum. See ChooseImageCount.
	DesiredNumSwapchainImages int
}

// CreateSwapchain builds a swapchain for the surface using the selection
// rules of ChooseSurfaceFormat, ChoosePresentMode and ChooseExtent, then
// fetches its images and creates one color view per image.
func (d *Device) CreateSwapchain(surface vk.Surface, graphicsQueue, presentQueue *Queue, options *CreateSwapchainOptions) (*Swapchain, error) {

	modes, err := d.PhysicalDevice.GetSurfacePresentModes(surface)
	if err != nil {
		return nil, err
	}
	presentMode := ChoosePresentMode(modes)

	rawFormats, err := d.PhysicalDevice.GetSurfaceFormats(surface)
	if err != nil {
		return nil, err
	}
	formats := make([]vk.SurfaceFormat, len(rawFormats))
	for i, f := range rawFormats {
		f.Deref()
		formats[i] = f
	}
	format, colorSpace := ChooseSurfaceFormat(formats)

	caps, err := d.PhysicalDevice.GetSurfaceCapabilities(surface)
	if err != nil {
		return nil, err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	hint := caps.MinImageExtent
	if options != nil {
		hint = options.ActualSize
	}
	swapchainSize := ChooseExtent(*caps, hint)

	desiredSwapChainImages := 0
	if options != nil {
		desiredSwapChainImages = options.DesiredNumSwapchainImages
	}
	imageCount := ChooseImageCount(*caps, desiredSwapChainImages)

	var swapchain vk.Swapchain

	createInfo := &vk.SwapchainCreateInfo{
		SType:           vk.StructureTypeSwapchainCreateInfo,
		Surface:         surface,
		MinImageCount:   uint32(imageCount),
		ImageFormat:     format,
		ImageColorSpace: colorSpace,
		ImageExtent: vk.Extent2D{
			Width:  swapchainSize.Width,
			Height: swapchainSize.Height,
		},
		PresentMode:      presentMode,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageArrayLayers: 1,
		Clipped:          vk.True,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		OldSwapchain:     vk.NullSwapchain,
	}

	if options != nil && options.OldSwapchain != nil {
		createInfo.OldSwapchain = options.OldSwapchain.VKSwapchain
	}

	if graphicsQueue.QueueFamily.Index != presentQueue.QueueFamily.Index {
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{uint32(graphicsQueue.QueueFamily.Index), uint32(presentQueue.QueueFamily.Index)}
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
	} else {
		createInfo.QueueFamilyIndexCount = 0
		createInfo.PQueueFamilyIndices = nil
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	err = deviceResult("create swapchain", vk.CreateSwapchain(d.VKDevice, createInfo, nil, &swapchain))
	if err != nil {
		return nil, err
	}

	var ret Swapchain
	ret.VKSwapchain = swapchain
	ret.Device = d
	ret.Extent = vk.Extent2D{
		Width:  swapchainSize.Width,
		Height: swapchainSize.Height,
	}
	ret.Format = format
	ret.ColorSpace = colorSpace

	ret.Images, err = ret.getImages()
	if err != nil {
		ret.Destroy()
		return nil, err
	}

	ret.ImageViews = make([]*ImageView, len(ret.Images))
	for i, img := range ret.Images {
		view, err := img.CreateImageView()
		if err != nil {
			for _, v := range ret.ImageViews[:i] {
				v.Destroy()
			}
			ret.ImageViews = nil
			ret.Destroy()
			return nil, err
		}
		ret.ImageViews[i] = view
	}

	return &ret, nil

}
