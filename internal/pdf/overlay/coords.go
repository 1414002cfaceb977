package overlay

// Box is an axis-aligned bounding box [left, top, right, bottom] in
// raster-image coordinates: origin at the top-left corner, y growing
// downward. This is the coordinate space authoring tools work in.
type Box [4]float64

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 {
	return b[2] - b[0]
}

// Height returns the vertical extent of the box.
func (b Box) Height() float64 {
	return b[3] - b[1]
}

// PDFBox is the mapped box in PDF page coordinates, returned as
// (left, bottom, right, top). Because image y grows downward and PDF y
// grows upward, the flip can invert the numeric ordering of Bottom and
// Top relative to the input; treat them as two bounds of an interval
// rather than assuming Bottom < Top.
type PDFBox struct {
	Left   float64
	Bottom float64
	Right  float64
	Top    float64
}

// YMin returns the smaller of the two vertical bounds.
func (p PDFBox) YMin() float64 {
	if p.Bottom < p.Top {
		return p.Bottom
	}
	return p.Top
}

// YMax returns the larger of the two vertical bounds.
func (p PDFBox) YMax() float64 {
	if p.Bottom > p.Top {
		return p.Bottom
	}
	return p.Top
}

// MapToPage maps a box from raster-image space onto a PDF page of the
// given dimensions. X coordinates scale linearly; y coordinates scale
// and flip around the page height.
func MapToPage(b Box, imgWidth, imgHeight, pageWidth, pageHeight float64) PDFBox {
	xScale := pageWidth / imgWidth
	yScale := pageHeight / imgHeight

	return PDFBox{
		Left:   b[0] * xScale,
		Right:  b[2] * xScale,
		Top:    pageHeight - b[1]*yScale,
		Bottom: pageHeight - b[3]*yScale,
	}
}
