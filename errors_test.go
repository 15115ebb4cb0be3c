package vkr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestSwapchainResultMapsResizeSignals(t *testing.T) {
	for _, ret := range []vk.Result{vk.ErrorOutOfDate, vk.Suboptimal} {
		err := swapchainResult("acquire", ret)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSwapchainOutOfDate)

		var scErr *SwapchainError
		require.ErrorAs(t, err, &scErr)
		assert.Equal(t, "acquire", scErr.Op)
	}
}

func TestSwapchainResultSuccess(t *testing.T) {
	assert.NoError(t, swapchainResult("present", vk.Success))
}

func TestSwapchainResultWrapsOtherFailures(t *testing.T) {
	err := swapchainResult("present", vk.ErrorDeviceLost)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrSwapchainOutOfDate))

	var devErr *DeviceError
	require.ErrorAs(t, err, &devErr)
	assert.Equal(t, vk.ErrorDeviceLost, devErr.Result)
}

func TestDeviceResult(t *testing.T) {
	assert.NoError(t, deviceResult("create fence", vk.Success))

	err := deviceResult("wait for fences", vk.Timeout)
	require.Error(t, err)
	var devErr *DeviceError
	require.ErrorAs(t, err, &devErr)
	assert.Equal(t, vk.Timeout, devErr.Result)
	assert.Contains(t, devErr.Error(), "wait for fences")
}

func TestResourceCreationError(t *testing.T) {
	err := &ResourceCreationError{Kind: "buffer", Reason: "zero size"}
	assert.Contains(t, err.Error(), "buffer")
	assert.Contains(t, err.Error(), "zero size")
}
