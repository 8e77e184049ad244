package styleextract

// pose is one frame's estimated head orientation.
type pose struct {
	yaw, pitch, roll float64
}

// LandmarkDetector is the dense facial-landmark backend. No in-process
// implementation is available in this environment — it requires a trained
// landmark model, run as an external service. BoundingBoxTracker below is
// the fallback this package actually runs, and also the only backend wired
// up, pending a LandmarkDetector implementation.
type LandmarkDetector interface {
	Detect(f Frame) (pose, bool)
}

// BoundingBoxTracker estimates (yaw, pitch) from the displacement of a
// frame's brightest region (the luma centroid, a cheap face proxy) from
// frame center, leaving roll at 0 as the fallback algorithm prescribes.
type BoundingBoxTracker struct{}

func (BoundingBoxTracker) Detect(f Frame) (pose, bool) {
	if f.Width == 0 || f.Height == 0 || len(f.Pixels) == 0 {
		return pose{}, false
	}

	var sumX, sumY, sumW float64
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			w := float64(f.Pixels[y*f.Width+x])
			sumX += w * float64(x)
			sumY += w * float64(y)
			sumW += w
		}
	}
	if sumW == 0 {
		return pose{}, false
	}

	cx := sumX / sumW
	cy := sumY / sumW

	yaw := (cx/float64(f.Width) - 0.5) * 2
	pitch := (cy/float64(f.Height) - 0.5) * 2
	return pose{yaw: yaw, pitch: pitch, roll: 0}, true
}
