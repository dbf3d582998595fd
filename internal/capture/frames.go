package capture

import (
	"context"
	"sync"

	"gocv.io/x/gocv"
)

// FrameBuffer holds the most recent JPEG frame. Publishers overwrite it;
// readers block until a newer frame than the one they last saw arrives.
type FrameBuffer struct {
	mu      sync.Mutex
	jpeg    []byte
	seq     uint64
	updated chan struct{}
}

func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{updated: make(chan struct{})}
}

// Publish replaces the current frame with a copy of data.
func (b *FrameBuffer) Publish(data []byte) {
	buf := make([]byte, len(data))
	copy(buf, data)

	b.mu.Lock()
	b.jpeg = buf
	b.seq++
	close(b.updated)
	b.updated = make(chan struct{})
	b.mu.Unlock()
}

// PublishMat JPEG-encodes mat and publishes it.
func (b *FrameBuffer) PublishMat(mat *gocv.Mat) error {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *mat)
	if err != nil {
		return err
	}
	defer buf.Close()

	b.Publish(buf.GetBytes())
	return nil
}

// Latest returns the current frame and its sequence number. Seq 0 means
// nothing has been published.
func (b *FrameBuffer) Latest() ([]byte, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.jpeg, b.seq
}

// Next waits for a frame newer than after.
func (b *FrameBuffer) Next(ctx context.Context, after uint64) ([]byte, uint64, error) {
	for {
		b.mu.Lock()
		if b.seq > after {
			data, seq := b.jpeg, b.seq
			b.mu.Unlock()
			return data, seq, nil
		}
		wait := b.updated
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, after, ctx.Err()
		case <-wait:
		}
	}
}
