package vkr

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

type Queue struct {
	Device      *Device
	QueueFamily *QueueFamily
	VKQueue     vk.Queue
}

func (q *Queue) WaitIdle() error {
	return deviceResult("queue wait idle", vk.QueueWaitIdle(q.VKQueue))
}

// SubmitWaitIdle submits the buffers and blocks until the queue drains. Used
// for one-shot transfer work such as staging-buffer copies.
func (q *Queue) SubmitWaitIdle(buffers ...*CommandBuffer) error {
	var submitInfo = vk.SubmitInfo{}
	submitInfo.SType = vk.StructureTypeSubmitInfo
	submitInfo.CommandBufferCount = uint32(len(buffers))

	b := make([]vk.CommandBuffer, len(buffers))
	for i := range buffers {
		b[i] = buffers[i].VKCommandBuffer
	}

	submitInfo.PCommandBuffers = b

	err := deviceResult("queue submit", vk.QueueSubmit(q.VKQueue, 1, []vk.SubmitInfo{submitInfo}, nil))
	if err != nil {
		return err
	}

	return q.WaitIdle()
}

// SubmitOptions describes the synchronization around one queue submission.
type SubmitOptions struct {
	// WaitSemaphores are awaited before the stages in WaitStages execute.
	WaitSemaphores []vk.Semaphore
	WaitStages     []vk.PipelineStageFlags
	// SignalSemaphores are signaled when all buffers finish.
	SignalSemaphores []vk.Semaphore
	// Fence is signaled when all buffers finish. May be nil.
	Fence vk.Fence
}

// SubmitWithOptions submits the buffers with explicit wait/signal
// synchronization and returns without blocking.
func (q *Queue) SubmitWithOptions(options *SubmitOptions, buffers ...*CommandBuffer) error {
	b := make([]vk.CommandBuffer, len(buffers))
	for i := range buffers {
		b[i] = buffers[i].VKCommandBuffer
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: uint32(len(buffers)),
		PCommandBuffers:    b,
	}

	var fence vk.Fence
	if options != nil {
		submitInfo.WaitSemaphoreCount = uint32(len(options.WaitSemaphores))
		submitInfo.PWaitSemaphores = options.WaitSemaphores
		submitInfo.PWaitDstStageMask = options.WaitStages
		submitInfo.SignalSemaphoreCount = uint32(len(options.SignalSemaphores))
		submitInfo.PSignalSemaphores = options.SignalSemaphores
		fence = options.Fence
	}

	return deviceResult("queue submit", vk.QueueSubmit(q.VKQueue, 1, []vk.SubmitInfo{submitInfo}, fence))
}

func (q *Queue) String() string {
	return fmt.Sprintf("{Device: %s QueueFamily: %s}", q.Device.String(), q.QueueFamily.String())
}
