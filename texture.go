package vkr

import (
	"image"
	"image/draw"
	"os"

	_ "image/jpeg"
	_ "image/png"

	vk "github.com/vulkan-go/vulkan"
)

// Texture is a sampled 2D image: a device-local RGBA image with its memory,
// a color view and a sampler.
type Texture struct {
	Image   *BoundImage
	View    *ImageView
	Sampler vk.Sampler
	Width   int
	Height  int
}

// LocalImage is an image decoded into host memory as tightly packed RGBA.
type LocalImage struct {
	img *image.RGBA
}

func (l *LocalImage) Bytes() []byte {
	return l.img.Pix
}

func (l *LocalImage) Bounds() image.Rectangle {
	return l.img.Bounds()
}

func LoadImageFromDisk(file string) (*LocalImage, error) {
	imageFile, err := os.Open(file)
	if err != nil {
		return nil, err
	}

	defer imageFile.Close()

	src, _, err := image.Decode(imageFile)
	if err != nil {
		return nil, err
	}

	b := src.Bounds()
	m := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(m, m.Bounds(), src, b.Min, draw.Src)

	return &LocalImage{m}, nil
}

// CreateSampler builds a linear-filtering, repeat-addressing sampler.
// Anisotropy is enabled only if the device was created with the
// sampler-anisotropy feature.
func (d *Device) CreateSampler(anisotropy bool) (vk.Sampler, error) {
	createInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
	}
	if anisotropy {
		createInfo.AnisotropyEnable = vk.True
		createInfo.MaxAnisotropy = 16
	}

	var sampler vk.Sampler
	err := deviceResult("create sampler", vk.CreateSampler(d.VKDevice, &createInfo, nil, &sampler))
	if err != nil {
		return vk.NullSampler, err
	}
	return sampler, nil
}

// CreateTextureFromRGBA uploads tightly packed RGBA pixels into a
// device-local sampled image. The pixels travel through a staging buffer;
// the image is transitioned to transfer-dst, filled, then transitioned to
// shader-read-only, all on a one-shot command buffer.
func (d *Device) CreateTextureFromRGBA(pixels []byte, width, height int, pool *CommandPool, anisotropy bool) (*Texture, error) {
	if len(pixels) != width*height*4 {
		return nil, &ResourceCreationError{Kind: "texture", Reason: "pixel data does not match extent"}
	}

	staging, err := d.CreateBoundBuffer(uint64(len(pixels)), BufferKindStaging)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	if err := staging.DeviceMemory.MapCopyUnmap(pixels); err != nil {
		return nil, err
	}

	img, err := d.CreateBoundImage(
		vk.Extent2D{Width: uint32(width), Height: uint32(height)},
		vk.FormatR8g8b8a8Unorm,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return nil, err
	}

	cb, err := pool.AllocateBuffer()
	if err != nil {
		img.Destroy()
		return nil, err
	}
	defer pool.FreeBuffer(cb)

	if err := cb.BeginOneTime(); err != nil {
		img.Destroy()
		return nil, err
	}
	cb.CmdTransitionImageLayout(&img.Image, vk.ImageAspectFlags(vk.ImageAspectColorBit),
		vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
	cb.CmdCopyBufferToImage(&staging.Buffer, &img.Image, width, height)
	cb.CmdTransitionImageLayout(&img.Image, vk.ImageAspectFlags(vk.ImageAspectColorBit),
		vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	if err := cb.End(); err != nil {
		img.Destroy()
		return nil, err
	}

	if err := d.GraphicsQueue.SubmitWaitIdle(cb); err != nil {
		img.Destroy()
		return nil, err
	}

	view, err := img.CreateImageView()
	if err != nil {
		img.Destroy()
		return nil, err
	}

	sampler, err := d.CreateSampler(anisotropy)
	if err != nil {
		view.Destroy()
		img.Destroy()
		return nil, err
	}

	return &Texture{
		Image:   img,
		View:    view,
		Sampler: sampler,
		Width:   width,
		Height:  height,
	}, nil
}

// LoadTextureFromDisk decodes a PNG or JPEG file and uploads it.
func (d *Device) LoadTextureFromDisk(file string, pool *CommandPool, anisotropy bool) (*Texture, error) {
	img, err := LoadImageFromDisk(file)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return d.CreateTextureFromRGBA(img.Bytes(), b.Dx(), b.Dy(), pool, anisotropy)
}

// DSInfo returns the descriptor info for binding this texture as a combined
// image sampler.
func (t *Texture) DSInfo() vk.DescriptorImageInfo {
	return vk.DescriptorImageInfo{
		Sampler:     t.Sampler,
		ImageView:   t.View.VKImageView,
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
	}
}

// Destroy releases the sampler, view, image and memory.
func (t *Texture) Destroy() {
	vk.DestroySampler(t.Image.Device.VKDevice, t.Sampler, nil)
	t.View.Destroy()
	t.Image.Destroy()
}
