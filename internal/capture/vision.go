// vision.go — VisionCapture: screenshot + OCR over a region centered on the
// action point (spec.md §4.1 VisionCapture).
package capture

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tracewright/locatorcore/internal/ports"
	"github.com/tracewright/locatorcore/internal/types"
)

// DefaultOCRRegionSize is the square region side, in px, OCR runs over
// (spec.md §4.1 "OCR on a region of ocrRegionSize^2 px centered on (x,y)").
const DefaultOCRRegionSize = 240

// VisionCapture owns the one VisionPort command stream for a tab
// (spec.md §5 Shared-resource policy: one owner, serialized commands).
type VisionCapture struct {
	port           ports.VisionPort
	ocrRegionSize  int
	ocrLanguage    string
	log            *logrus.Entry
}

// NewVisionCapture constructs a VisionCapture bound to one VisionPort.
func NewVisionCapture(port ports.VisionPort, ocrRegionSize int, ocrLanguage string, log *logrus.Entry) *VisionCapture {
	if ocrRegionSize <= 0 {
		ocrRegionSize = DefaultOCRRegionSize
	}
	if ocrLanguage == "" {
		ocrLanguage = "eng"
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &VisionCapture{port: port, ocrRegionSize: ocrRegionSize, ocrLanguage: ocrLanguage, log: log}
}

// Snapshot captures a screenshot and runs OCR over the region centered on
// (x, y). A capture or OCR failure degrades this layer only, returning
// Available=false, never an error (spec.md §4.1 Failure semantics).
func (v *VisionCapture) Snapshot(ctx context.Context, tabID string, x, y float64) types.VisionEvidence {
	if v.port == nil {
		return types.VisionEvidence{Available: false}
	}

	shot, err := v.port.CaptureScreenshot(ctx, tabID, "png", 80)
	if err != nil {
		v.log.WithError(err).Debug("vision capture: screenshot failed")
		return types.VisionEvidence{Available: false}
	}

	half := float64(v.ocrRegionSize) / 2
	region := types.Rect{
		X:      x - half,
		Y:      y - half,
		Width:  float64(v.ocrRegionSize),
		Height: float64(v.ocrRegionSize),
	}

	result, err := v.port.RunOCR(ctx, shot, &region, v.ocrLanguage)
	if err != nil {
		v.log.WithError(err).Debug("vision capture: OCR failed")
		return types.VisionEvidence{Available: false}
	}

	return types.VisionEvidence{
		Available:     true,
		TargetText:    result.Text,
		BoundingBox:   result.BBox,
		OCRConfidence: result.Confidence,
		RegionSize:    v.ocrRegionSize,
	}
}

// String aids debug logging of a capture invocation without leaking image
// bytes.
func (v *VisionCapture) String() string {
	return fmt.Sprintf("VisionCapture{regionSize=%d, lang=%s}", v.ocrRegionSize, v.ocrLanguage)
}
