package vkr

import (
	"fmt"
	"log"
	"time"

	vk "github.com/vulkan-go/vulkan"
)

// FrameSlot holds the per-frame resources for one frame in flight: the
// command buffer the frame is recorded into, the fence that gates reuse of
// the slot, and the two semaphores linking acquire, submit and present.
type FrameSlot struct {
	CommandBuffer *CommandBuffer
	// Fence is created signaled so the first wait on a fresh slot returns
	// immediately. It is reset just before the submission that signals it.
	Fence *Fence
	// AcquireSemaphore is signaled by the presentation engine when the
	// acquired image is ready; the slot's submission waits on it at the
	// color-attachment-output stage.
	AcquireSemaphore vk.Semaphore
	// RenderSemaphore is signaled when the slot's submission finishes and is
	// waited on by the present request.
	RenderSemaphore vk.Semaphore
}

// FrameRing is the fixed ring of frame slots. With F slots, frame M runs on
// slot M mod F; the fence wait at the top of a frame guarantees the GPU has
// retired the submission from F frames ago before the slot is reused.
type FrameRing struct {
	Device       *Device
	Pool         *CommandPool
	Slots        []*FrameSlot
	FenceTimeout time.Duration
}

// CreateFrameRing builds framesInFlight slots on a dedicated command pool
// for the graphics queue family.
func (d *Device) CreateFrameRing(framesInFlight int, fenceTimeout time.Duration) (*FrameRing, error) {
	if framesInFlight < 1 {
		return nil, fmt.Errorf("frame ring needs at least one slot, got %d", framesInFlight)
	}

	pool, err := d.CreateCommandPool(d.GraphicsQueue.QueueFamily)
	if err != nil {
		return nil, err
	}

	ring := &FrameRing{
		Device:       d,
		Pool:         pool,
		Slots:        make([]*FrameSlot, 0, framesInFlight),
		FenceTimeout: fenceTimeout,
	}

	buffers, err := pool.AllocateBuffers(framesInFlight)
	if err != nil {
		ring.Destroy()
		return nil, err
	}

	for i := 0; i < framesInFlight; i++ {
		fence, err := d.CreateFence(true)
		if err != nil {
			ring.Destroy()
			return nil, err
		}
		acquire, err := d.VKCreateSemaphore()
		if err != nil {
			fence.Destroy()
			ring.Destroy()
			return nil, err
		}
		render, err := d.VKCreateSemaphore()
		if err != nil {
			fence.Destroy()
			d.VKDestroySemaphore(acquire)
			ring.Destroy()
			return nil, err
		}
		ring.Slots = append(ring.Slots, &FrameSlot{
			CommandBuffer:    buffers[i],
			Fence:            fence,
			AcquireSemaphore: acquire,
			RenderSemaphore:  render,
		})
	}

	return ring, nil
}

func (r *FrameRing) Frames() int {
	return len(r.Slots)
}

// WaitForFrame blocks until the slot's previous submission retires. A fence
// timeout is fatal; see Device.WaitForFences.
func (r *FrameRing) WaitForFrame(slot int) error {
	return r.Device.WaitForFences(r.FenceTimeout, r.Slots[slot].Fence)
}

// ResetFrameFence returns the slot's fence to unsignaled ahead of the
// submission that will signal it. Called only after WaitForFrame and after
// image acquisition has succeeded, so a failed acquire never strands the
// fence unsignaled.
func (r *FrameRing) ResetFrameFence(slot int) error {
	return r.Device.ResetFences(r.Slots[slot].Fence)
}

func (r *FrameRing) BeginRecording(slot int) error {
	cb := r.Slots[slot].CommandBuffer
	if err := cb.Reset(); err != nil {
		return err
	}
	return cb.Begin()
}

func (r *FrameRing) EndRecording(slot int) error {
	return r.Slots[slot].CommandBuffer.End()
}

// Submit hands the slot's command buffer to the graphics queue. The
// submission waits on the slot's acquire semaphore at the color-attachment
// output stage, so earlier stages overlap the presentation engine's use of
// the image, and signals the render semaphore and the slot fence on
// completion.
func (r *FrameRing) Submit(slot int) error {
	s := r.Slots[slot]
	return r.Device.GraphicsQueue.SubmitWithOptions(&SubmitOptions{
		WaitSemaphores:   []vk.Semaphore{s.AcquireSemaphore},
		WaitStages:       []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		SignalSemaphores: []vk.Semaphore{s.RenderSemaphore},
		Fence:            s.Fence.VKFence,
	}, s.CommandBuffer)
}

// Destroy waits for the device to idle, then tears down the slots and the
// pool. Safe to call on a partially constructed ring. Teardown never fails;
// an idle-wait error is logged and destruction proceeds.
func (r *FrameRing) Destroy() {
	if err := r.Device.WaitIdle(); err != nil {
		log.Printf("wait idle before frame ring teardown: %v", err)
	}
	for _, s := range r.Slots {
		if s.Fence != nil {
			s.Fence.Destroy()
		}
		r.Device.VKDestroySemaphore(s.AcquireSemaphore)
		r.Device.VKDestroySemaphore(s.RenderSemaphore)
	}
	r.Slots = nil
	if r.Pool != nil {
		r.Pool.Destroy()
		r.Pool = nil
	}
}

// ringOps is the slice of FrameRing the frame loop drives. Narrow on
// purpose so the loop's ordering rules can be exercised against a fake.
type ringOps interface {
	Frames() int
	WaitForFrame(slot int) error
	ResetFrameFence(slot int) error
	BeginRecording(slot int) error
	EndRecording(slot int) error
	Submit(slot int) error
}

// presentOps is the loop's view of the swapchain: acquire an image using
// the slot's synchronization, and later present it.
type presentOps interface {
	AcquireImage(slot int) (int, error)
	PresentImage(slot int, image int) error
}

// chainPresenter adapts a Swapchain to presentOps, binding each slot's own
// semaphores to its acquire and present so the image acquired with a slot's
// semaphore is always the one its submission waits for.
type chainPresenter struct {
	ring  *FrameRing
	chain *Swapchain
}

func (p *chainPresenter) AcquireImage(slot int) (int, error) {
	return p.chain.AcquireNextImage(p.ring.Slots[slot].AcquireSemaphore)
}

func (p *chainPresenter) PresentImage(slot int, image int) error {
	return p.chain.Present(p.ring.Device.PresentQueue, p.ring.Slots[slot].RenderSemaphore, image)
}

type frameState int

const (
	frameIdle frameState = iota
	frameRecording
	frameSubmitted
)

func (s frameState) String() string {
	switch s {
	case frameIdle:
		return "idle"
	case frameRecording:
		return "recording"
	case frameSubmitted:
		return "submitted"
	}
	return "unknown"
}

// frameLoop sequences one frame at a time over a ring and a presenter. It
// owns the ring cursor: begin waits for the current slot and acquires a back
// buffer, end submits, present hands the image off and advances the cursor.
type frameLoop struct {
	ring       ringOps
	chain      presentOps
	index      int
	backBuffer int
	state      frameState
}

func newFrameLoop(ring ringOps, chain presentOps) *frameLoop {
	return &frameLoop{ring: ring, chain: chain, backBuffer: -1}
}

// begin waits for the current slot's fence, acquires a back buffer with the
// slot's semaphore, resets the fence and opens the command buffer. On an
// out-of-date swapchain the loop stays idle and the slot's fence stays
// signaled, so the frame can simply be retried after a resize.
func (l *frameLoop) begin() error {
	if l.state != frameIdle {
		return fmt.Errorf("frame begin in %s state", l.state)
	}

	if err := l.ring.WaitForFrame(l.index); err != nil {
		return err
	}

	image, err := l.chain.AcquireImage(l.index)
	if err != nil {
		return err
	}
	l.backBuffer = image

	if err := l.ring.ResetFrameFence(l.index); err != nil {
		return err
	}
	if err := l.ring.BeginRecording(l.index); err != nil {
		return err
	}

	l.state = frameRecording
	return nil
}

// end closes the command buffer and submits it.
func (l *frameLoop) end() error {
	if l.state != frameRecording {
		return fmt.Errorf("frame end in %s state", l.state)
	}

	if err := l.ring.EndRecording(l.index); err != nil {
		return err
	}
	if err := l.ring.Submit(l.index); err != nil {
		return err
	}

	l.state = frameSubmitted
	return nil
}

// present hands the back buffer to the presentation engine and advances to
// the next slot. The cursor advances even when presentation reports the
// swapchain out of date: the submission already happened, its fence will
// signal, and the caller resizes before the next frame.
func (l *frameLoop) present() error {
	if l.state != frameSubmitted {
		return fmt.Errorf("frame present in %s state", l.state)
	}

	err := l.chain.PresentImage(l.index, l.backBuffer)

	l.index = (l.index + 1) % l.ring.Frames()
	l.backBuffer = -1
	l.state = frameIdle

	return err
}
