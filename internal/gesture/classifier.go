package gesture

import "github.com/ayusman/janken/internal/detector"

// Thresholds are the empirical margins used by Classify. All values are in
// normalized image units except WristRaise, which scales the wrist Y.
type Thresholds struct {
	ExtendMargin float64 // tip must sit this far above its knuckle to count as extended
	CurlMargin   float64 // tip at or below knuckle minus this margin counts as curled
	FistDistance float64 // thumb tip to index PIP must be closer than this for rock
	WristRaise   float64 // index and middle tips must be above WristRaise * wrist Y for paper
}

// DefaultThresholds returns the tuned thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ExtendMargin: 0.06,
		CurlMargin:   0.02,
		FistDistance: 0.15,
		WristRaise:   0.9,
	}
}

// finger pairs a fingertip with its base knuckle.
type finger struct {
	tip, mcp int
}

var (
	index  = finger{detector.IndexTip, detector.IndexMCP}
	middle = finger{detector.MiddleTip, detector.MiddleMCP}
	ring   = finger{detector.RingTip, detector.RingMCP}
	pinky  = finger{detector.PinkyTip, detector.PinkyMCP}
)

// Classify maps a landmark set to a gesture. It returns None for fewer than
// 21 points or for poses that match nothing. When several predicates hold,
// paper wins over scissors, and scissors over rock.
func Classify(points []detector.Point3D, th Thresholds) Gesture {
	if len(points) < detector.NumLandmarks {
		return None
	}

	// Y grows downward, so "above" means a smaller value.
	extended := func(f finger) bool {
		return points[f.mcp].Y-points[f.tip].Y > th.ExtendMargin
	}
	curled := func(f finger) bool {
		return points[f.tip].Y >= points[f.mcp].Y-th.CurlMargin
	}

	wristLine := th.WristRaise * points[detector.Wrist].Y

	if extended(index) && extended(middle) && extended(ring) && extended(pinky) &&
		points[detector.IndexTip].Y < wristLine && points[detector.MiddleTip].Y < wristLine {
		return Paper
	}

	if extended(index) && extended(middle) && curled(ring) && curled(pinky) {
		return Scissors
	}

	if curled(index) && curled(middle) && curled(ring) && curled(pinky) &&
		detector.Distance2D(points[detector.ThumbTip], points[detector.IndexPIP]) < th.FistDistance {
		return Rock
	}

	return None
}

// ClassifyHand is Classify for a detector hand. A nil hand is None.
func ClassifyHand(h *detector.HandLandmarks, th Thresholds) Gesture {
	if h == nil {
		return None
	}
	return Classify(h.Points[:], th)
}
