// Package detector provides hand detection interfaces and the landmark types
// the game consumes.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a normalized landmark. X and Y are in [0,1] relative to the
// frame, with Y growing downward. Z is relative depth and may be zero.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// HandFromPoints builds a HandLandmarks from a variable-length point list as
// delivered over the wire. It reports false when fewer than NumLandmarks
// points are given; extra points are ignored.
func HandFromPoints(points []Point3D, handedness string, score float64) (HandLandmarks, bool) {
	h := HandLandmarks{Handedness: handedness, Score: score}
	if len(points) < NumLandmarks {
		return h, false
	}
	copy(h.Points[:], points[:NumLandmarks])
	return h, true
}

// Distance2D returns the planar (x, y) Euclidean distance between two points.
func Distance2D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// distance3D calculates the Euclidean distance between two 3D points.
func distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// HandSpan returns the wrist to middle finger MCP distance, a rough measure
// of how large the hand appears in the frame.
func (h *HandLandmarks) HandSpan() float64 {
	if h == nil {
		return 0
	}
	return distance3D(h.Points[Wrist], h.Points[MiddleMCP])
}
