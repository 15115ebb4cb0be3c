package vkr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func family(index int, flags vk.QueueFlagBits) *QueueFamily {
	return &QueueFamily{
		Index:                   index,
		VKQueueFamilyProperties: vk.QueueFamilyProperties{QueueFlags: vk.QueueFlags(flags)},
	}
}

func TestQueueFamilyCapabilityFlags(t *testing.T) {
	graphics := family(0, vk.QueueGraphicsBit|vk.QueueTransferBit)
	assert.True(t, graphics.IsGraphics())
	assert.True(t, graphics.IsTransfer())
	assert.False(t, graphics.IsCompute())

	compute := family(1, vk.QueueComputeBit)
	assert.True(t, compute.IsCompute())
	assert.False(t, compute.IsGraphics())
}

func TestQueueFamilySliceFilters(t *testing.T) {
	families := QueueFamilySlice{
		family(0, vk.QueueGraphicsBit|vk.QueueComputeBit|vk.QueueTransferBit),
		family(1, vk.QueueComputeBit),
		family(2, vk.QueueTransferBit),
	}

	graphics := families.FilterGraphics()
	assert.Len(t, graphics, 1)
	assert.Equal(t, 0, graphics[0].Index)

	compute := families.FilterCompute()
	assert.Len(t, compute, 2)
	assert.Equal(t, 0, compute[0].Index)
	assert.Equal(t, 1, compute[1].Index)

	assert.Len(t, families.FilterTransfer(), 2)
}

func TestQueueFamilyString(t *testing.T) {
	s := family(3, vk.QueueGraphicsBit).String()
	assert.Contains(t, s, "Index: 3")
	assert.Contains(t, s, "Graphics: true")
	assert.Contains(t, s, "Compute: false")
}
