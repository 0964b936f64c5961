package vision

import "image"

// Lead identifies one of the twelve standard ECG leads
type Lead string

const (
	LeadI   Lead = "I"
	LeadII  Lead = "II"
	LeadIII Lead = "III"
	LeadAVR Lead = "aVR"
	LeadAVL Lead = "aVL"
	LeadAVF Lead = "aVF"
	LeadV1  Lead = "V1"
	LeadV2  Lead = "V2"
	LeadV3  Lead = "V3"
	LeadV4  Lead = "V4"
	LeadV5  Lead = "V5"
	LeadV6  Lead = "V6"
)

// LayoutRows is the number of lead bands stacked in each column of the sheet.
const LayoutRows = 6

// Leads lists every lead in canonical order: the limb leads fill the left
// column top to bottom, the precordial leads fill the right column.
var Leads = []Lead{
	LeadI, LeadII, LeadIII, LeadAVR, LeadAVL, LeadAVF,
	LeadV1, LeadV2, LeadV3, LeadV4, LeadV5, LeadV6,
}

func (l Lead) String() string { return string(l) }

// Position returns the column (0 left, 1 right) and row (0 top) of the lead
// on the sheet, or (-1, -1) for an unknown lead.
func (l Lead) Position() (column, row int) {
	for i, lead := range Leads {
		if lead == l {
			return i / LayoutRows, i % LayoutRows
		}
	}
	return -1, -1
}

// LeadRect returns the region of a width x height sheet assigned to lead.
//
// The sheet splits at width/2 into two columns, the right one taking the odd
// column when width is odd. Each column is cut into six bands of height/6
// rows; rows left over at the bottom belong to no lead. An unknown lead or a
// sheet too small to hold the band yields an empty rectangle.
func LeadRect(lead Lead, width, height int) image.Rectangle {
	col, row := lead.Position()
	if col < 0 {
		return image.Rectangle{}
	}

	mid := width / 2
	rowHeight := height / LayoutRows

	x0, x1 := 0, mid
	if col == 1 {
		x0, x1 = mid, width
	}
	r := image.Rect(x0, row*rowHeight, x1, (row+1)*rowHeight)
	if r.Empty() {
		return image.Rectangle{}
	}
	return r
}
