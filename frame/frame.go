// Package frame provides the geometry primitives shared by the frame
// tracker, the sampler family, and the demodulator: the 8-bit grayscale
// image type, integer and floating point points, lines, a sub-pixel
// coordinate matrix, and the frame format descriptor.
package frame

import "fmt"

// Point is an integer coordinate in image space.
type Point struct {
	X, Y int
}

// PointF is a sub-pixel coordinate in image space.
type PointF struct {
	X, Y float64
}

// Line is a pair of sub-pixel coordinates.
type Line struct {
	A, B PointF
}

// Length returns the squared Euclidean length of the line (no square root
// is taken).
func (l Line) Length() float64 {
	dx := l.B.X - l.A.X
	dy := l.B.Y - l.A.Y
	return dx*dx + dy*dy
}

// Image8 is a width x height raster of 8-bit grayscale pixels. An Image8
// is immutable once constructed; 0 is black, 255 is white.
type Image8 struct {
	width, height int
	pix           []uint8
}

// NewImage8 returns an Image8 backed by pix, which must have length
// width*height and is row-major (pix[y*width+x]). The image borrows pix;
// callers must not mutate it afterwards.
func NewImage8(width, height int, pix []uint8) (*Image8, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("frame: invalid image dimensions %dx%d", width, height)
	}
	if len(pix) != width*height {
		return nil, fmt.Errorf("frame: pixel buffer length %d does not match %dx%d", len(pix), width, height)
	}
	return &Image8{width: width, height: height, pix: pix}, nil
}

// NewBlankImage8 returns a width x height Image8 filled with value.
func NewBlankImage8(width, height int, value uint8) *Image8 {
	pix := make([]uint8, width*height)
	if value != 0 {
		for i := range pix {
			pix[i] = value
		}
	}
	img, _ := NewImage8(width, height, pix)
	return img
}

// Width returns the image width in pixels.
func (m *Image8) Width() int { return m.width }

// Height returns the image height in pixels.
func (m *Image8) Height() int { return m.height }

// At returns the pixel at (x, y), or 0 if out of bounds.
func (m *Image8) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return 0
	}
	return m.pix[y*m.width+x]
}

// AtClamped returns the pixel at (x, y), clamping (x, y) to the image
// bounds rather than returning 0. Samplers use this for border handling.
func (m *Image8) AtClamped(x, y int) uint8 {
	if x < 0 {
		x = 0
	} else if x >= m.width {
		x = m.width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= m.height {
		y = m.height - 1
	}
	return m.pix[y*m.width+x]
}

// Set writes the pixel at (x, y). Used only during image construction (e.g.
// by test fixtures and the metadata/calibration renderers), never by the
// decode path proper.
func (m *Image8) Set(x, y int, v uint8) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return
	}
	m.pix[y*m.width+x] = v
}

// Pix returns the raw row-major pixel buffer. Callers must not mutate it.
func (m *Image8) Pix() []uint8 { return m.pix }

// PointMatrix is a width x height grid whose cell (col, row) holds a
// sub-pixel coordinate in the source image. Access is row-major along the
// logical grid, matching the data container's (row, col) addressing.
type PointMatrix struct {
	cols, rows int
	pts        []PointF
}

// NewPointMatrix returns a cols x rows PointMatrix with all cells zeroed.
func NewPointMatrix(cols, rows int) *PointMatrix {
	return &PointMatrix{cols: cols, rows: rows, pts: make([]PointF, cols*rows)}
}

// Cols returns the number of columns.
func (m *PointMatrix) Cols() int { return m.cols }

// Rows returns the number of rows.
func (m *PointMatrix) Rows() int { return m.rows }

// At returns the coordinate at (col, row).
func (m *PointMatrix) At(col, row int) PointF {
	return m.pts[row*m.cols+col]
}

// Set writes the coordinate at (col, row).
func (m *PointMatrix) Set(col, row int, p PointF) {
	m.pts[row*m.cols+col] = p
}

// FormatType distinguishes the two recognised GPF raster layouts.
type FormatType int

const (
	GPFv1_0 FormatType = iota
	GPFv1_1
)

// Format is the immutable record describing a printed frame's geometry,
// loaded from the configuration registry (see boxconfig).
type Format struct {
	Name string
	Type FormatType

	// Raster size in pixels.
	Width, Height int

	// Corner-mark symbol size and gap, in printed pixels.
	CornerMarkSize, CornerMarkGap int

	// Border and border-gap widths, in printed pixels.
	Border, BorderGap int

	// Tiles per column in the metadata strip.
	TilesPerColumn int

	// Reference-bar sync distance and offset.
	RefBarSyncDistance, RefBarSyncOffset int

	// Maximum levels per symbol (symbol alphabet size).
	MaxLevelsPerSymbol int

	// Sync-point distance (horizontal, vertical), radius and offset within
	// the data container.
	SyncPointHDistance, SyncPointVDistance int
	SyncPointRadius, SyncPointOffset       int

	// Content container size in symbol cells.
	ContentCols, ContentRows int

	// Metadata container size in symbol cells.
	MetadataCols, MetadataRows int
}

// BitsPerSymbol returns log2(MaxLevelsPerSymbol).
func (f Format) BitsPerSymbol() int {
	n := 0
	v := f.MaxLevelsPerSymbol
	for v > 1 {
		v >>= 1
		n++
	}
	return n
}

// Resolved returns a copy of f with the content/metadata grid dimensions
// defaulted from Width/Height/TilesPerColumn wherever the registry left
// them at zero. Real configuration sources carry no contentCols/
// contentRows keys at all, so this defaulting is load-bearing rather than
// a fallback for a rarely-omitted key; both the tracker (per frame) and
// the codec pipeline builder (once, at construction) must apply it the
// same way, which is why it lives here rather than in either caller.
func (f Format) Resolved() Format {
	if f.ContentCols == 0 {
		f.ContentCols = f.Width / 32
	}
	if f.ContentRows == 0 {
		f.ContentRows = f.Height / 32
	}
	if f.MetadataRows == 0 {
		f.MetadataRows = f.TilesPerColumn
	}
	if f.MetadataCols == 0 {
		f.MetadataCols = f.TilesPerColumn
	}
	return f
}

// CornerMarks holds the four tracked corner marks, in image space.
//
// Invariant: BottomLeft.Y > TopLeft.Y and TopRight.X > TopLeft.X; violating
// this is a fatal tracking error (see Validate).
type CornerMarks struct {
	TopLeft, TopRight, BottomLeft, BottomRight Point
}

// Validate checks the corner-mark dimension invariant of spec §8.
func (c CornerMarks) Validate() error {
	if c.TopRight.X-c.TopLeft.X < 1 {
		return fmt.Errorf("frame: corner marks invalid: top-right.x - top-left.x = %d < 1", c.TopRight.X-c.TopLeft.X)
	}
	if c.BottomLeft.Y-c.TopLeft.Y < 1 {
		return fmt.Errorf("frame: corner marks invalid: bottom-left.y - top-left.y = %d < 1", c.BottomLeft.Y-c.TopLeft.Y)
	}
	if c.BottomRight.X-c.BottomLeft.X < 1 {
		return fmt.Errorf("frame: corner marks invalid: bottom-right.x - bottom-left.x = %d < 1", c.BottomRight.X-c.BottomLeft.X)
	}
	if c.BottomRight.Y-c.TopRight.Y < 1 {
		return fmt.Errorf("frame: corner marks invalid: bottom-right.y - top-right.y = %d < 1", c.BottomRight.Y-c.TopRight.Y)
	}
	return nil
}

// InBounds reports whether all four corner marks lie strictly inside an
// image of the given size.
func (c CornerMarks) InBounds(width, height int) bool {
	pts := [4]Point{c.TopLeft, c.TopRight, c.BottomLeft, c.BottomRight}
	for _, p := range pts {
		if p.X < 0 || p.Y < 0 || p.X >= width || p.Y >= height {
			return false
		}
	}
	return true
}
