package vision

import (
	"gocv.io/x/gocv"
)

// LeadImage is the region of a sheet holding one lead's trace
type LeadImage struct {
	Lead Lead
	Mat  gocv.Mat
}

// Empty reports whether the lead region has no pixels
func (li LeadImage) Empty() bool {
	return li.Mat.Empty()
}

// Close releases the region header. The parent sheet is not affected.
func (li LeadImage) Close() error {
	return li.Mat.Close()
}

// CloseLeads closes every lead image in leads
func CloseLeads(leads []LeadImage) {
	for _, li := range leads {
		li.Close()
	}
}

// SegmentLeads cuts img into the twelve lead regions of the fixed 2 x 6
// layout, returned in canonical order. Regions share pixels with img, so img
// must stay open until every returned LeadImage is closed.
//
// A sheet too small to give a lead any area still yields that lead, with an
// empty Mat, so callers always receive twelve entries.
func SegmentLeads(img gocv.Mat) ([]LeadImage, error) {
	if img.Empty() {
		return nil, ErrEmptyImage
	}

	width, height := img.Cols(), img.Rows()
	leads := make([]LeadImage, 0, len(Leads))
	for _, lead := range Leads {
		rect := LeadRect(lead, width, height)
		if rect.Empty() {
			leads = append(leads, LeadImage{Lead: lead, Mat: gocv.NewMat()})
			continue
		}
		leads = append(leads, LeadImage{Lead: lead, Mat: img.Region(rect)})
	}
	return leads, nil
}
