package vkr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRing records the loop's calls so ordering rules can be checked
// without a device.
type fakeRing struct {
	frames  int
	calls   []string
	waitErr error
}

func (r *fakeRing) Frames() int { return r.frames }

func (r *fakeRing) WaitForFrame(slot int) error {
	r.calls = append(r.calls, fmt.Sprintf("wait %d", slot))
	return r.waitErr
}

func (r *fakeRing) ResetFrameFence(slot int) error {
	r.calls = append(r.calls, fmt.Sprintf("reset %d", slot))
	return nil
}

func (r *fakeRing) BeginRecording(slot int) error {
	r.calls = append(r.calls, fmt.Sprintf("begin %d", slot))
	return nil
}

func (r *fakeRing) EndRecording(slot int) error {
	r.calls = append(r.calls, fmt.Sprintf("end %d", slot))
	return nil
}

func (r *fakeRing) Submit(slot int) error {
	r.calls = append(r.calls, fmt.Sprintf("submit %d", slot))
	return nil
}

// fakeChain hands out images round-robin the way a FIFO presentation
// engine does.
type fakeChain struct {
	ring       *fakeRing
	images     int
	next       int
	acquireErr error
	presentErr error
}

func (c *fakeChain) AcquireImage(slot int) (int, error) {
	c.ring.calls = append(c.ring.calls, fmt.Sprintf("acquire %d", slot))
	if c.acquireErr != nil {
		return 0, c.acquireErr
	}
	img := c.next % c.images
	c.next++
	return img, nil
}

func (c *fakeChain) PresentImage(slot int, image int) error {
	c.ring.calls = append(c.ring.calls, fmt.Sprintf("present %d %d", slot, image))
	return c.presentErr
}

func newFakeLoop(frames, images int) (*frameLoop, *fakeRing, *fakeChain) {
	ring := &fakeRing{frames: frames}
	chain := &fakeChain{ring: ring, images: images}
	return newFrameLoop(ring, chain), ring, chain
}

func runFrame(t *testing.T, loop *frameLoop) {
	t.Helper()
	require.NoError(t, loop.begin())
	require.NoError(t, loop.end())
	require.NoError(t, loop.present())
}

func TestFrameLoopSlotIsFrameModuloRingSize(t *testing.T) {
	for _, frames := range []int{1, 2, 3} {
		t.Run(fmt.Sprintf("frames=%d", frames), func(t *testing.T) {
			loop, _, _ := newFakeLoop(frames, 3)
			for m := 0; m < 10; m++ {
				assert.Equal(t, m%frames, loop.index, "frame %d", m)
				runFrame(t, loop)
			}
		})
	}
}

func TestFrameLoopDoubleBufferedSteadyState(t *testing.T) {
	loop, ring, _ := newFakeLoop(2, 2)

	slots := make([]int, 0, 5)
	backBuffers := make([]int, 0, 5)
	for m := 0; m < 5; m++ {
		slots = append(slots, loop.index)
		require.NoError(t, loop.begin())
		backBuffers = append(backBuffers, loop.backBuffer)
		require.NoError(t, loop.end())
		require.NoError(t, loop.present())
	}

	assert.Equal(t, []int{0, 1, 0, 1, 0}, slots)
	assert.Equal(t, []int{0, 1, 0, 1, 0}, backBuffers)

	// Each frame touches its slot in wait, acquire, reset, begin, end,
	// submit, present order.
	assert.Equal(t, []string{
		"wait 0", "acquire 0", "reset 0", "begin 0", "end 0", "submit 0", "present 0 0",
	}, ring.calls[:7])
}

func TestFrameLoopFenceWaitPrecedesEverything(t *testing.T) {
	loop, ring, _ := newFakeLoop(2, 3)
	runFrame(t, loop)
	require.NotEmpty(t, ring.calls)
	assert.Equal(t, "wait 0", ring.calls[0])
}

func TestFrameLoopFenceResetOnlyAfterAcquireSucceeds(t *testing.T) {
	loop, ring, chain := newFakeLoop(2, 2)
	chain.acquireErr = &SwapchainError{Op: "acquire", Err: ErrSwapchainOutOfDate}

	err := loop.begin()
	assert.ErrorIs(t, err, ErrSwapchainOutOfDate)
	assert.Equal(t, []string{"wait 0", "acquire 0"}, ring.calls,
		"fence must stay signaled when no submission will follow")
	assert.Equal(t, frameIdle, loop.state)

	// After a resize the same frame retries on the same slot.
	chain.acquireErr = nil
	runFrame(t, loop)
	assert.Equal(t, 1, loop.index)
}

func TestFrameLoopOutOfDateOnPresentStillAdvances(t *testing.T) {
	loop, _, chain := newFakeLoop(2, 2)
	chain.presentErr = &SwapchainError{Op: "present", Err: ErrSwapchainOutOfDate}

	require.NoError(t, loop.begin())
	require.NoError(t, loop.end())
	err := loop.present()
	assert.ErrorIs(t, err, ErrSwapchainOutOfDate)

	// The submission happened, so the cursor moves on regardless.
	assert.Equal(t, 1, loop.index)
	assert.Equal(t, frameIdle, loop.state)
}

func TestFrameLoopRejectsOutOfOrderCalls(t *testing.T) {
	loop, _, _ := newFakeLoop(2, 2)

	assert.Error(t, loop.end(), "end before begin")
	assert.Error(t, loop.present(), "present before begin")

	require.NoError(t, loop.begin())
	assert.Error(t, loop.begin(), "double begin")
	assert.Error(t, loop.present(), "present while recording")

	require.NoError(t, loop.end())
	assert.Error(t, loop.begin(), "begin while submitted")
	assert.Error(t, loop.end(), "double end")

	require.NoError(t, loop.present())
}

func TestFrameLoopPropagatesFenceTimeout(t *testing.T) {
	loop, ring, _ := newFakeLoop(2, 2)
	ring.waitErr = &DeviceError{Op: "wait for fences", Result: 2} // vk.Timeout

	err := loop.begin()
	require.Error(t, err)
	var devErr *DeviceError
	assert.ErrorAs(t, err, &devErr)
	assert.Equal(t, frameIdle, loop.state)
}

func TestFrameLoopSingleSlotReusesSlotZero(t *testing.T) {
	loop, _, _ := newFakeLoop(1, 3)
	for m := 0; m < 4; m++ {
		assert.Equal(t, 0, loop.index)
		runFrame(t, loop)
	}
}
