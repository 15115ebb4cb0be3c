package vkr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestBufferKindUsage(t *testing.T) {
	assert.Equal(t,
		vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit|vk.BufferUsageTransferDstBit),
		BufferKindUsage(BufferKindVertex))
	assert.Equal(t,
		vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit|vk.BufferUsageTransferDstBit),
		BufferKindUsage(BufferKindIndex))
	assert.Equal(t,
		vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
		BufferKindUsage(BufferKindUniform))
	assert.Equal(t,
		vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit),
		BufferKindUsage(BufferKindStorage))
	assert.Equal(t,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		BufferKindUsage(BufferKindStaging))
}

func TestBufferKindProperties(t *testing.T) {
	// Vertex and index data live on the device and are filled by transfer.
	assert.Equal(t, vk.MemoryPropertyFlagBits(vk.MemoryPropertyDeviceLocalBit), BufferKindProperties(BufferKindVertex))
	assert.Equal(t, vk.MemoryPropertyFlagBits(vk.MemoryPropertyDeviceLocalBit), BufferKindProperties(BufferKindIndex))

	// Uniform and staging data are rewritten by the CPU, so coherent
	// host-visible memory avoids explicit flushes.
	hostCoherent := vk.MemoryPropertyFlagBits(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	assert.Equal(t, hostCoherent, BufferKindProperties(BufferKindUniform))
	assert.Equal(t, hostCoherent, BufferKindProperties(BufferKindStaging))

	assert.Equal(t, vk.MemoryPropertyFlagBits(vk.MemoryPropertyHostVisibleBit), BufferKindProperties(BufferKindStorage))
}

func TestBufferKindString(t *testing.T) {
	assert.Equal(t, "vertex", BufferKindVertex.String())
	assert.Equal(t, "staging", BufferKindStaging.String())
	assert.Equal(t, "unknown", BufferKind(99).String())
}
