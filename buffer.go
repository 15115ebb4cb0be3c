package vkr

import (
	vk "github.com/vulkan-go/vulkan"
)

// Buffer are used to map hunks of data that are then bound to resources used by the pipeline
// and command buffers to render data.
type Buffer struct {
	Device   *Device
	VKBuffer vk.Buffer
	Size     uint64
}

// BufferKind selects the usage and memory placement of a buffer. Each kind
// expands to a fixed pair of usage flags and memory properties.
type BufferKind int

const (
	// BufferKindVertex is a device-local vertex buffer filled through a
	// staging copy.
	BufferKindVertex BufferKind = iota
	// BufferKindIndex is a device-local index buffer filled through a
	// staging copy.
	BufferKindIndex
	// BufferKindUniform is a host-visible, host-coherent uniform buffer the
	// CPU rewrites every frame.
	BufferKindUniform
	// BufferKindStorage is a host-visible storage buffer.
	BufferKindStorage
	// BufferKindStaging is a host-visible, host-coherent transfer source.
	BufferKindStaging
)

func (k BufferKind) String() string {
	switch k {
	case BufferKindVertex:
		return "vertex"
	case BufferKindIndex:
		return "index"
	case BufferKindUniform:
		return "uniform"
	case BufferKindStorage:
		return "storage"
	case BufferKindStaging:
		return "staging"
	}
	return "unknown"
}

// BufferKindUsage returns the usage flags a kind expands to.
func BufferKindUsage(k BufferKind) vk.BufferUsageFlags {
	switch k {
	case BufferKindVertex:
		return vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit | vk.BufferUsageTransferDstBit)
	case BufferKindIndex:
		return vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit | vk.BufferUsageTransferDstBit)
	case BufferKindUniform:
		return vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit)
	case BufferKindStorage:
		return vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit)
	case BufferKindStaging:
		return vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit)
	}
	return 0
}

// BufferKindProperties returns the memory properties a kind expands to.
func BufferKindProperties(k BufferKind) vk.MemoryPropertyFlagBits {
	switch k {
	case BufferKindVertex, BufferKindIndex:
		return vk.MemoryPropertyDeviceLocalBit
	case BufferKindUniform, BufferKindStaging:
		return vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit
	case BufferKindStorage:
		return vk.MemoryPropertyHostVisibleBit
	}
	return 0
}

func (d *Device) CreateBuffer(sizeInBytes uint64) (*Buffer, error) {
	return d.CreateBufferWithOptions(sizeInBytes, vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit), vk.SharingModeExclusive)
}

func (d *Device) CreateBufferWithOptions(sizeInBytes uint64, usage vk.BufferUsageFlags, sharing vk.SharingMode) (*Buffer, error) {

	if sizeInBytes == 0 {
		return nil, &ResourceCreationError{Kind: "buffer", Reason: "zero size"}
	}

	bufferCreateInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(sizeInBytes),
		Usage:       usage,
		SharingMode: sharing,
	}

	var buffer vk.Buffer
	err := deviceResult("create buffer", vk.CreateBuffer(d.VKDevice, &bufferCreateInfo, nil, &buffer))
	if err != nil {
		return nil, err
	}

	var ret Buffer
	ret.VKBuffer = buffer
	ret.Device = d
	ret.Size = sizeInBytes

	return &ret, nil

}

func (b *Buffer) VKMemoryRequirements() vk.MemoryRequirements {
	var memoryRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(b.Device.VKDevice, b.VKBuffer, &memoryRequirements)
	return memoryRequirements
}

func (b *Buffer) DSInfo(offset int) vk.DescriptorBufferInfo {
	var descriptorBufferInfo = vk.DescriptorBufferInfo{}
	descriptorBufferInfo.Buffer = b.VKBuffer
	descriptorBufferInfo.Offset = vk.DeviceSize(offset)
	descriptorBufferInfo.Range = vk.DeviceSize(b.Size)
	return descriptorBufferInfo
}

func (b *Buffer) AllocationRequirements() *AllocationRequirements {
	memoryRequirements := b.VKMemoryRequirements()
	mr := &memoryRequirements
	mr.Deref()

	return &AllocationRequirements{
		Size:           int(mr.Size),
		MemoryTypeBits: mr.MemoryTypeBits,
	}
}

func (b *Buffer) Bind(memory *DeviceMemory, offset uint64) error {
	return deviceResult("bind buffer memory", vk.BindBufferMemory(b.Device.VKDevice, b.VKBuffer, memory.VKDeviceMemory, vk.DeviceSize(offset)))
}

func (b *Buffer) Destroy() {
	vk.DestroyBuffer(b.Device.VKDevice, b.VKBuffer, nil)
}

// BoundBuffer is a buffer bound at offset zero to a memory allocation made
// just for it. Buffer and memory are created, bound and destroyed together.
type BoundBuffer struct {
	Buffer
	DeviceMemory *DeviceMemory
}

// CreateBoundBuffer creates a buffer of the given kind together with its
// dedicated memory allocation.
func (d *Device) CreateBoundBuffer(sizeInBytes uint64, kind BufferKind) (*BoundBuffer, error) {
	buffer, err := d.CreateBufferWithOptions(sizeInBytes, BufferKindUsage(kind), vk.SharingModeExclusive)
	if err != nil {
		return nil, err
	}

	memory, err := d.AllocateForBuffer(buffer, BufferKindProperties(kind))
	if err != nil {
		buffer.Destroy()
		return nil, err
	}

	if err := buffer.Bind(memory, 0); err != nil {
		memory.Destroy()
		buffer.Destroy()
		return nil, err
	}

	bb := &BoundBuffer{DeviceMemory: memory}
	bb.Device = d
	bb.VKBuffer = buffer.VKBuffer
	bb.Size = buffer.Size
	return bb, nil
}

// CreateBoundBufferWithData creates a bound buffer of the given kind and
// fills it with data. Host-visible kinds are written through a map; device
// local kinds go through a staging buffer and a blocking transfer on the
// graphics queue.
func (d *Device) CreateBoundBufferWithData(data []byte, kind BufferKind, pool *CommandPool) (*BoundBuffer, error) {
	bb, err := d.CreateBoundBuffer(uint64(len(data)), kind)
	if err != nil {
		return nil, err
	}

	if BufferKindProperties(kind)&vk.MemoryPropertyHostVisibleBit != 0 {
		if err := bb.DeviceMemory.MapCopyUnmap(data); err != nil {
			bb.Destroy()
			return nil, err
		}
		return bb, nil
	}

	staging, err := d.CreateBoundBuffer(uint64(len(data)), BufferKindStaging)
	if err != nil {
		bb.Destroy()
		return nil, err
	}
	defer staging.Destroy()

	if err := staging.DeviceMemory.MapCopyUnmap(data); err != nil {
		bb.Destroy()
		return nil, err
	}

	cb, err := pool.AllocateBuffer()
	if err != nil {
		bb.Destroy()
		return nil, err
	}
	defer pool.FreeBuffer(cb)

	if err := cb.BeginOneTime(); err != nil {
		bb.Destroy()
		return nil, err
	}
	cb.CmdCopyBuffer(&staging.Buffer, &bb.Buffer, len(data))
	if err := cb.End(); err != nil {
		bb.Destroy()
		return nil, err
	}

	if err := d.GraphicsQueue.SubmitWaitIdle(cb); err != nil {
		bb.Destroy()
		return nil, err
	}

	return bb, nil
}

// Destroy releases the buffer and then its memory.
func (b *BoundBuffer) Destroy() {
	b.Buffer.Destroy()
	b.DeviceMemory.Destroy()
}
