// SPDX-License-Identifier: EPL-2.0

package audio

import "sync"

// RingBuffer is a bounded FIFO of interleaved float32 samples shared by one
// producer and one consumer.
type RingBuffer struct {
	buffer   []float32
	readPos  int
	writePos int
	count    int
	mu       sync.Mutex
}

// NewRingBuffer creates a ring buffer holding up to capacity samples.
func NewRingBuffer(capacity int) *RingBuffer {
	return &RingBuffer{buffer: make([]float32, capacity)}
}

// Write appends as many samples as fit and returns how many were stored.
func (rb *RingBuffer) Write(samples []float32) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	size := len(rb.buffer)
	n := min(len(samples), size-rb.count)
	for i := range n {
		rb.buffer[rb.writePos] = samples[i]
		rb.writePos = (rb.writePos + 1) % size
	}
	rb.count += n

	return n
}

// Read moves up to len(samples) samples into samples and returns the count.
// Unlike a device buffer it does not zero-fill on underrun.
func (rb *RingBuffer) Read(samples []float32) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	size := len(rb.buffer)
	n := min(len(samples), rb.count)
	for i := range n {
		samples[i] = rb.buffer[rb.readPos]
		rb.readPos = (rb.readPos + 1) % size
	}
	rb.count -= n

	return n
}

// Available returns the number of buffered samples.
func (rb *RingBuffer) Available() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}

// Free returns the number of samples that can still be written.
func (rb *RingBuffer) Free() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return len(rb.buffer) - rb.count
}

// Cap returns the capacity in samples.
func (rb *RingBuffer) Cap() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return len(rb.buffer)
}

// Grow raises the capacity to at least capacity samples, keeping the
// buffered samples in order.
func (rb *RingBuffer) Grow(capacity int) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if capacity <= len(rb.buffer) {
		return
	}

	buf := make([]float32, capacity)
	size := len(rb.buffer)
	for i := range rb.count {
		buf[i] = rb.buffer[(rb.readPos+i)%size]
	}
	rb.buffer = buf
	rb.readPos, rb.writePos = 0, rb.count%capacity
}
