package vkr

import (
	"time"

	vk "github.com/vulkan-go/vulkan"
)

type Fence struct {
	Device  *Device
	VKFence vk.Fence
}

func (d *Device) VKDestroyFence(f vk.Fence) {
	vk.DestroyFence(d.VKDevice, f, nil)
}

func (d *Device) VKCreateFence(signaled bool) (vk.Fence, error) {
	var fence vk.Fence
	var fenceCreateInfo = vk.FenceCreateInfo{}
	fenceCreateInfo.SType = vk.StructureTypeFenceCreateInfo
	if signaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	err := deviceResult("create fence", vk.CreateFence(d.VKDevice, &fenceCreateInfo, nil, &fence))
	if err != nil {
		return nil, err
	}
	return fence, nil
}

// CreateFence creates a fence. A frame slot's fence starts signaled so the
// first wait on it returns immediately; transfer fences start unsignaled.
func (d *Device) CreateFence(signaled bool) (*Fence, error) {

	fence, err := d.VKCreateFence(signaled)
	if err != nil {
		return nil, err
	}

	var ret Fence
	ret.VKFence = fence
	ret.Device = d
	return &ret, nil

}

// WaitForFences blocks until all fences signal or the timeout elapses. A
// timeout is returned as a DeviceError with Result vk.Timeout; the GPU is in
// an unknown state at that point and the caller should treat it as fatal.
func (d *Device) WaitForFences(ts time.Duration, fences ...*Fence) error {

	f := make([]vk.Fence, len(fences))
	for i := range fences {
		f[i] = fences[i].VKFence
	}

	ret := vk.WaitForFences(d.VKDevice, uint32(len(fences)), f, vk.True, uint64(ts.Nanoseconds()))
	return deviceResult("wait for fences", ret)
}

// ResetFences returns the fences to the unsignaled state. Reset happens only
// after a successful wait and before the submission that will signal them
// again, so a fence is never reset while the GPU still owes it a signal.
func (d *Device) ResetFences(fences ...*Fence) error {
	f := make([]vk.Fence, len(fences))
	for i := range fences {
		f[i] = fences[i].VKFence
	}
	return deviceResult("reset fences", vk.ResetFences(d.VKDevice, uint32(len(fences)), f))
}

func (f *Fence) Destroy() {
	vk.DestroyFence(f.Device.VKDevice, f.VKFence, nil)
}
