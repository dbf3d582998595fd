package app

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/janken/internal/capture"
	"github.com/ayusman/janken/internal/detector"
	"github.com/ayusman/janken/internal/logger"
)

// FrameSink accepts one frame's detections.
type FrameSink interface {
	SubmitFrame(hands []detector.HandLandmarks) bool
}

// Pipeline reads the local camera at a fixed rate, publishes each frame for
// MJPEG viewers, runs hand detection and forwards the result to a sink.
type Pipeline struct {
	camera   capture.Camera
	detector detector.Detector
	sink     FrameSink
	frames   *capture.FrameBuffer
	log      *slog.Logger

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewPipeline creates a pipeline. frames may be nil.
func NewPipeline(cam capture.Camera, det detector.Detector, sink FrameSink, frames *capture.FrameBuffer) *Pipeline {
	return &Pipeline{
		camera:   cam,
		detector: det,
		sink:     sink,
		frames:   frames,
		log:      logger.With("component", "pipeline"),
	}
}

// Start opens the camera and begins the detection loop. Calling Start on a
// running pipeline does nothing.
func (p *Pipeline) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopCh != nil {
		return nil
	}

	if err := p.camera.Open(); err != nil {
		return err
	}

	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	go p.run(p.stopCh, p.doneCh, p.camera.FPS())

	p.log.Info("detection pipeline started", "fps", p.camera.FPS())
	return nil
}

// Stop halts the loop, waits for it to exit and releases the camera and
// detector.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	stopCh, doneCh := p.stopCh, p.doneCh
	p.stopCh, p.doneCh = nil, nil
	p.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-doneCh

	if err := p.camera.Close(); err != nil {
		p.log.Warn("error closing camera", "error", err)
	}
	if err := p.detector.Close(); err != nil {
		p.log.Warn("error closing detector", "error", err)
	}

	p.log.Info("detection pipeline stopped")
}

// Running reports whether the loop is active.
func (p *Pipeline) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopCh != nil
}

func (p *Pipeline) run(stopCh <-chan struct{}, doneCh chan<- struct{}, fps int) {
	defer close(doneCh)

	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			p.step()
		}
	}
}

// step processes one frame. Errors are logged and the frame skipped.
func (p *Pipeline) step() {
	frame, err := p.camera.ReadFrame()
	if err != nil {
		p.log.Debug("error reading frame", "error", err)
		return
	}
	defer frame.Close()

	if p.frames != nil {
		if err := p.frames.PublishMat(frame); err != nil {
			p.log.Debug("error encoding frame", "error", err)
		}
	}

	hands, err := p.detector.Detect(frame)
	if err != nil {
		p.log.Warn("error detecting hands", "error", err)
		return
	}

	p.sink.SubmitFrame(hands)
}
