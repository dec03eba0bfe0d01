package entity

// InferenceResult is the JSON a remote inference service answers with,
// over HTTP or WebSocket.
type InferenceResult struct {
	Detections []InferenceDetection `json:"detections"`
	Error      string               `json:"error,omitempty"`
}

// InferenceDetection carries a label, a class index, or both. ClassID is
// nil when the service omitted it.
type InferenceDetection struct {
	Label      string    `json:"label,omitempty"`
	ClassID    *int      `json:"class_id,omitempty"`
	Confidence float64   `json:"conf"`
	BBox       []float64 `json:"bbox,omitempty"`
}

// ToDetection resolves the label through names when the service sent only
// a class index. ok is false when no label can be produced.
func (d InferenceDetection) ToDetection(names func(classID int) (string, bool)) (Detection, bool) {
	det := Detection{
		ClassID:    -1,
		Label:      d.Label,
		Confidence: d.Confidence,
	}
	if d.ClassID != nil {
		det.ClassID = *d.ClassID
	}

	if det.Label == "" {
		if d.ClassID == nil || names == nil {
			return det, false
		}
		label, ok := names(*d.ClassID)
		if !ok {
			return det, false
		}
		det.Label = label
	}

	if len(d.BBox) == 4 {
		det.Box = BoundingBox{X1: d.BBox[0], Y1: d.BBox[1], X2: d.BBox[2], Y2: d.BBox[3]}
	}
	return det, true
}

func (r InferenceResult) ToDetections(names func(classID int) (string, bool)) []Detection {
	out := make([]Detection, 0, len(r.Detections))
	for _, d := range r.Detections {
		if det, ok := d.ToDetection(names); ok {
			out = append(out, det)
		}
	}
	return out
}
