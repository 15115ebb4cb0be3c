package vkr

import (
	"errors"
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// ErrSwapchainOutOfDate is reported (wrapped in a SwapchainError) when the
// surface no longer matches the swapchain, typically after a window resize.
// The caller is expected to invoke Context.Resize and retry the frame.
var ErrSwapchainOutOfDate = errors.New("swapchain out of date")

// CapabilitySelectionError indicates that no physical device satisfied the
// required extensions, features and surface support.
type CapabilitySelectionError struct {
	Reason string
}

func (e *CapabilitySelectionError) Error() string {
	return fmt.Sprintf("device selection: %s", e.Reason)
}

// DeviceError wraps a non-success result from the underlying API. A fence
// wait that times out is reported as a DeviceError with Result vk.Timeout;
// callers should treat it as fatal.
type DeviceError struct {
	Op     string
	Result vk.Result
}

func (e *DeviceError) Error() string {
	if verr := vk.Error(e.Result); verr != nil {
		return fmt.Sprintf("%s: %s (%d)", e.Op, verr.Error(), e.Result)
	}
	return fmt.Sprintf("%s: result %d", e.Op, e.Result)
}

// deviceResult converts a vk.Result into a DeviceError, or nil on success.
func deviceResult(op string, ret vk.Result) error {
	if ret == vk.Success {
		return nil
	}
	return &DeviceError{Op: op, Result: ret}
}

// SwapchainError wraps acquire/present failures. Use errors.Is with
// ErrSwapchainOutOfDate to detect the resize signal.
type SwapchainError struct {
	Op  string
	Err error
}

func (e *SwapchainError) Error() string {
	return fmt.Sprintf("swapchain %s: %v", e.Op, e.Err)
}

func (e *SwapchainError) Unwrap() error {
	return e.Err
}

// swapchainResult maps a vk.Result from acquire/present onto the error
// taxonomy: out-of-date and suboptimal both signal the resize protocol.
func swapchainResult(op string, ret vk.Result) error {
	switch ret {
	case vk.Success:
		return nil
	case vk.ErrorOutOfDate, vk.Suboptimal:
		return &SwapchainError{Op: op, Err: ErrSwapchainOutOfDate}
	default:
		return &SwapchainError{Op: op, Err: &DeviceError{Op: op, Result: ret}}
	}
}

// MemoryTypeError indicates that no memory type reported by the device
// matches both the resource's type bitmask and the requested properties.
type MemoryTypeError struct {
	TypeBits   uint32
	Properties vk.MemoryPropertyFlagBits
}

func (e *MemoryTypeError) Error() string {
	return fmt.Sprintf("no compatible memory type for bits 0x%x with properties 0x%x", e.TypeBits, uint32(e.Properties))
}

// ResourceCreationError indicates a GPU resource (shader module, sampler,
// texture, buffer, ...) could not be built.
type ResourceCreationError struct {
	Kind   string
	Reason string
}

func (e *ResourceCreationError) Error() string {
	return fmt.Sprintf("create %s: %s", e.Kind, e.Reason)
}
