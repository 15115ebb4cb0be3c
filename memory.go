package vkr

import (
	vk "github.com/vulkan-go/vulkan"
)

// AllocationRequirements carries the size and memory-type mask a resource
// reported through vkGet*MemoryRequirements.
type AllocationRequirements struct {
	Size           int
	MemoryTypeBits uint32
}

// FindMemoryTypeIndex returns the index of the first memory type that is
// both enabled in memoryTypeBits (bit i set means type i is usable) and
// whose property flags are a superset of the requested properties. The walk
// is in device order, so for identical inputs the result is identical.
func FindMemoryTypeIndex(types MemoryTypeSlice, memoryTypeBits uint32, properties vk.MemoryPropertyFlagBits) (uint32, error) {
	for i := range types {
		if memoryTypeBits&(1<<uint32(i)) != 0 &&
			vk.MemoryPropertyFlagBits(types[i].PropertyFlags)&properties == properties {
			return uint32(i), nil
		}
	}
	return 0, &MemoryTypeError{TypeBits: memoryTypeBits, Properties: properties}
}
