package vkr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestChooseSurfaceFormatUndefinedMeansNoPreference(t *testing.T) {
	format, colorSpace := ChooseSurfaceFormat([]vk.SurfaceFormat{
		{Format: vk.FormatUndefined},
	})
	assert.Equal(t, vk.FormatB8g8r8a8Unorm, format)
	assert.Equal(t, vk.ColorSpaceSrgbNonlinear, colorSpace)
}

func TestChooseSurfaceFormatPrefersBGRASrgb(t *testing.T) {
	format, colorSpace := ChooseSurfaceFormat([]vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	})
	assert.Equal(t, vk.FormatB8g8r8a8Unorm, format)
	assert.Equal(t, vk.ColorSpaceSrgbNonlinear, colorSpace)
}

func TestChooseSurfaceFormatFallsBackToFirst(t *testing.T) {
	format, colorSpace := ChooseSurfaceFormat([]vk.SurfaceFormat{
		{Format: vk.FormatR5g6b5UnormPack16, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	})
	assert.Equal(t, vk.FormatR5g6b5UnormPack16, format)
	assert.Equal(t, vk.ColorSpaceSrgbNonlinear, colorSpace)
}

func TestChooseSurfaceFormatIsDeterministic(t *testing.T) {
	formats := []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}
	f1, c1 := ChooseSurfaceFormat(formats)
	f2, c2 := ChooseSurfaceFormat(formats)
	assert.Equal(t, f1, f2)
	assert.Equal(t, c1, c2)
}

func TestChoosePresentModePrefersMailbox(t *testing.T) {
	mode := ChoosePresentMode([]vk.PresentMode{
		vk.PresentModeFifo, vk.PresentModeMailbox, vk.PresentModeImmediate,
	})
	assert.Equal(t, vk.PresentModeMailbox, mode)
}

func TestChoosePresentModeFallsBackToFifo(t *testing.T) {
	assert.Equal(t, vk.PresentModeFifo, ChoosePresentMode([]vk.PresentMode{
		vk.PresentModeImmediate, vk.PresentModeFifoRelaxed,
	}))
	assert.Equal(t, vk.PresentModeFifo, ChoosePresentMode(nil))
}

func TestChooseImageCountDefaultsToMinPlusOne(t *testing.T) {
	caps := vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 8}
	assert.Equal(t, 3, ChooseImageCount(caps, 0))
}

func TestChooseImageCountCoversEveryFrameSlot(t *testing.T) {
	// A surface happy with a single image still has to carry one image per
	// frame in flight.
	caps := vk.SurfaceCapabilities{MinImageCount: 1, MaxImageCount: 8}
	assert.Equal(t, 3, ChooseImageCount(caps, 3))

	// The default already covers a small ring.
	assert.Equal(t, 2, ChooseImageCount(caps, 2))
}

func TestChooseImageCountClampsToSurfaceMax(t *testing.T) {
	caps := vk.SurfaceCapabilities{MinImageCount: 1, MaxImageCount: 2}
	assert.Equal(t, 2, ChooseImageCount(caps, 3))

	// Zero max means the surface imposes no ceiling.
	unbounded := vk.SurfaceCapabilities{MinImageCount: 2}
	assert.Equal(t, 5, ChooseImageCount(unbounded, 5))
}

func TestSwapchainDestroyNilReceiver(t *testing.T) {
	// Teardown after a failed recreation runs with no swapchain at all.
	var s *Swapchain
	assert.NotPanics(t, s.Destroy)
}

func TestChooseExtentUsesSurfaceExtentWhenFixed(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: 800, Height: 600},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
	}
	extent := ChooseExtent(caps, vk.Extent2D{Width: 1024, Height: 768})
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, extent)
}

func TestChooseExtentUsesClampedHintWhenSurfaceDefers(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 200, Height: 200},
		MaxImageExtent: vk.Extent2D{Width: 2000, Height: 2000},
	}

	extent := ChooseExtent(caps, vk.Extent2D{Width: 1024, Height: 768})
	assert.Equal(t, vk.Extent2D{Width: 1024, Height: 768}, extent)

	extent = ChooseExtent(caps, vk.Extent2D{Width: 100, Height: 5000})
	assert.Equal(t, vk.Extent2D{Width: 200, Height: 2000}, extent)
}
