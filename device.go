package vkr

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// Device is the logical device and the gateway through which every GPU
// object in this package is created and destroyed.
type Device struct {
	PhysicalDevice *PhysicalDevice
	VKDevice       vk.Device

	// GraphicsQueue receives command-buffer submissions. PresentQueue
	// receives present requests. They alias the same queue on hardware where
	// one family serves both roles.
	GraphicsQueue *Queue
	PresentQueue  *Queue
}

func (d *Device) Destroy() {
	vk.DestroyDevice(d.VKDevice, nil)
}

func (d *Device) String() string {
	return fmt.Sprintf("{ PhysicalDevice: %s }", d.PhysicalDevice)
}

func (d *Device) WaitIdle() error {
	return deviceResult("device wait idle", vk.DeviceWaitIdle(d.VKDevice))
}

func (d *Device) GetQueue(qf *QueueFamily) *Queue {

	var vkq vk.Queue

	vk.GetDeviceQueue(d.VKDevice, uint32(qf.Index), 0, &vkq)

	var queue Queue
	queue.QueueFamily = qf
	queue.Device = d
	queue.VKQueue = vkq

	return &queue
}

// Allocate allocates device memory of the given size from the first memory
// type compatible with both the resource's type bits and the requested
// properties.
func (d *Device) Allocate(sizeInBytes int, memoryTypeBits uint32, memoryProperties vk.MemoryPropertyFlagBits) (*DeviceMemory, error) {

	var allocateInfo = vk.MemoryAllocateInfo{}
	allocateInfo.SType = vk.StructureTypeMemoryAllocateInfo
	allocateInfo.AllocationSize = vk.DeviceSize(sizeInBytes)

	var err error

	allocateInfo.MemoryTypeIndex, err = d.PhysicalDevice.FindMemoryType(
		memoryTypeBits,
		memoryProperties)

	if err != nil {
		return nil, err
	}

	var deviceMemory vk.DeviceMemory

	ret := vk.AllocateMemory(d.VKDevice, &allocateInfo, nil, &deviceMemory)
	if ret != vk.Success {
		return nil, deviceResult("allocate memory", ret)
	}

	var mem DeviceMemory

	mem.Size = uint64(sizeInBytes)
	mem.Device = d
	mem.VKDeviceMemory = deviceMemory

	return &mem, nil
}

// AllocateForBuffer allocates memory satisfying the buffer's requirements.
// The allocation backs that buffer alone.
func (d *Device) AllocateForBuffer(b *Buffer, memoryProperties vk.MemoryPropertyFlagBits) (*DeviceMemory, error) {
	ar := b.AllocationRequirements()
	return d.Allocate(ar.Size, ar.MemoryTypeBits, memoryProperties)
}

// AllocateForImage allocates memory satisfying the image's requirements.
func (d *Device) AllocateForImage(img *Image, memoryProperties vk.MemoryPropertyFlagBits) (*DeviceMemory, error) {
	ar := img.AllocationRequirements()
	return d.Allocate(ar.Size, ar.MemoryTypeBits, memoryProperties)
}
