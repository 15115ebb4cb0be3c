package vkr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func memType(props vk.MemoryPropertyFlagBits) vk.MemoryType {
	return vk.MemoryType{PropertyFlags: vk.MemoryPropertyFlags(props)}
}

func TestFindMemoryTypeIndexFirstFit(t *testing.T) {
	types := MemoryTypeSlice{
		memType(vk.MemoryPropertyDeviceLocalBit),
		memType(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit),
		memType(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit | vk.MemoryPropertyHostCachedBit),
	}

	// All types allowed: the first host-visible+coherent wins.
	index, err := FindMemoryTypeIndex(types, 0x7, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), index)
}

func TestFindMemoryTypeIndexHonorsTypeBits(t *testing.T) {
	types := MemoryTypeSlice{
		memType(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit),
		memType(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit),
	}

	// Type 0 satisfies the properties but the resource forbids it.
	index, err := FindMemoryTypeIndex(types, 0x2, vk.MemoryPropertyHostVisibleBit)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), index)
}

func TestFindMemoryTypeIndexRequiresPropertySuperset(t *testing.T) {
	types := MemoryTypeSlice{
		memType(vk.MemoryPropertyHostVisibleBit),
		memType(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit | vk.MemoryPropertyDeviceLocalBit),
	}

	// Extra flags on the winning type are fine; missing flags are not.
	index, err := FindMemoryTypeIndex(types, 0x3, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), index)
}

func TestFindMemoryTypeIndexNoMatch(t *testing.T) {
	types := MemoryTypeSlice{
		memType(vk.MemoryPropertyDeviceLocalBit),
	}

	_, err := FindMemoryTypeIndex(types, 0x1, vk.MemoryPropertyHostVisibleBit)
	require.Error(t, err)

	var mtErr *MemoryTypeError
	require.ErrorAs(t, err, &mtErr)
	assert.Equal(t, uint32(0x1), mtErr.TypeBits)
	assert.Equal(t, vk.MemoryPropertyFlagBits(vk.MemoryPropertyHostVisibleBit), mtErr.Properties)
}

func TestMemoryTypeSliceCounts(t *testing.T) {
	types := MemoryTypeSlice{
		memType(vk.MemoryPropertyDeviceLocalBit),
		memType(vk.MemoryPropertyHostVisibleBit),
		memType(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit),
	}

	assert.Equal(t, 2, types.NumHostVisible())
	assert.Equal(t, 1, types.NumHostVisibleAndCoherent())
	assert.Equal(t, 1, types.NumDeviceLocal())
}

func TestFindMemoryTypeIndexDeterministic(t *testing.T) {
	types := MemoryTypeSlice{
		memType(vk.MemoryPropertyDeviceLocalBit),
		memType(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit),
	}

	for i := 0; i < 3; i++ {
		index, err := FindMemoryTypeIndex(types, 0x3, vk.MemoryPropertyHostVisibleBit)
		require.NoError(t, err)
		assert.Equal(t, uint32(1), index)
	}
}
