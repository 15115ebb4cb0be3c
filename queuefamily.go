package vkr

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// QueueFamilySlice is the set of queue families a physical device exposes,
// in device order.
type QueueFamilySlice []*QueueFamily

// Filter returns the families for which f reports true.
func (ql QueueFamilySlice) Filter(f func(q *QueueFamily) bool) QueueFamilySlice {
	ret := make(QueueFamilySlice, 0)
	for _, q := range ql {
		if f(q) {
			ret = append(ret, q)
		}
	}
	return ret
}

// FilterGraphics returns the families that accept graphics commands.
func (ql QueueFamilySlice) FilterGraphics() QueueFamilySlice {
	return ql.Filter(func(q *QueueFamily) bool {
		return q.IsGraphics()
	})
}

// FilterCompute returns the families that accept compute dispatches.
func (ql QueueFamilySlice) FilterCompute() QueueFamilySlice {
	return ql.Filter(func(q *QueueFamily) bool {
		return q.IsCompute()
	})
}

// FilterTransfer returns the families that accept transfer work.
func (ql QueueFamilySlice) FilterTransfer() QueueFamilySlice {
	return ql.Filter(func(q *QueueFamily) bool {
		return q.IsTransfer()
	})
}

// QueueFamily is one queue family of a physical device. The Index is what
// the rest of the API identifies the family by.
type QueueFamily struct {
	Index                   int
	PhysicalDevice          *PhysicalDevice
	VKQueueFamilyProperties vk.QueueFamilyProperties
}

func (q *QueueFamily) hasFlags(flags vk.QueueFlagBits) bool {
	return q.VKQueueFamilyProperties.QueueFlags&vk.QueueFlags(flags) != 0
}

func (q *QueueFamily) IsGraphics() bool {
	return q.hasFlags(vk.QueueGraphicsBit)
}

func (q *QueueFamily) IsCompute() bool {
	return q.hasFlags(vk.QueueComputeBit)
}

func (q *QueueFamily) IsTransfer() bool {
	return q.hasFlags(vk.QueueTransferBit)
}

// SupportsPresent reports whether the family can present to the surface.
func (q *QueueFamily) SupportsPresent(surface vk.Surface) bool {
	var supportsPresent vk.Bool32
	vk.GetPhysicalDeviceSurfaceSupport(q.PhysicalDevice.VKPhysicalDevice, uint32(q.Index), surface, &supportsPresent)
	return supportsPresent == vk.True
}

func (q *QueueFamily) String() string {
	return fmt.Sprintf("{ Index: %d Compute: %v Graphics: %v Transfer: %v }", q.Index, q.IsCompute(), q.IsGraphics(), q.IsTransfer())
}
