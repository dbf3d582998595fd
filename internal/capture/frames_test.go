package capture

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func TestFrameBuffer_PublishAndLatest(t *testing.T) {
	b := NewFrameBuffer()

	if data, seq := b.Latest(); data != nil || seq != 0 {
		t.Fatalf("empty buffer returned %v, %d", data, seq)
	}

	src := []byte{1, 2, 3}
	b.Publish(src)
	src[0] = 9

	data, seq := b.Latest()
	if seq != 1 || !bytes.Equal(data, []byte{1, 2, 3}) {
		t.Errorf("Latest() = %v, %d; publish must copy", data, seq)
	}
}

func TestFrameBuffer_NextWaits(t *testing.T) {
	b := NewFrameBuffer()

	got := make(chan []byte, 1)
	go func() {
		data, _, err := b.Next(context.Background(), 0)
		if err == nil {
			got <- data
		}
	}()

	select {
	case <-got:
		t.Fatal("Next returned before any frame was published")
	case <-time.After(20 * time.Millisecond):
	}

	b.Publish([]byte("frame"))

	select {
	case data := <-got:
		if string(data) != "frame" {
			t.Errorf("Next() = %q", data)
		}
	case <-time.After(time.Second):
		t.Fatal("Next did not wake on publish")
	}
}

func TestFrameBuffer_NextReturnsImmediatelyWhenNewer(t *testing.T) {
	b := NewFrameBuffer()
	b.Publish([]byte("a"))
	b.Publish([]byte("b"))

	data, seq, err := b.Next(context.Background(), 1)
	if err != nil || seq != 2 || string(data) != "b" {
		t.Errorf("Next() = %q, %d, %v", data, seq, err)
	}
}

func TestFrameBuffer_NextCancelled(t *testing.T) {
	b := NewFrameBuffer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, seq, err := b.Next(ctx, 0)
	if !errors.Is(err, context.Canceled) || seq != 0 {
		t.Errorf("Next() = %d, %v; want context.Canceled", seq, err)
	}
}

func TestFrameBuffer_PublishMat(t *testing.T) {
	mat := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer mat.Close()

	b := NewFrameBuffer()
	if err := b.PublishMat(&mat); err != nil {
		t.Fatalf("PublishMat() error = %v", err)
	}

	data, _ := b.Latest()
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Error("published frame is not a JPEG")
	}
}
