// internal/seal/silhouette.go
package seal

import "math"

// silhouette is the closed outline the seal is drawn into: an egg-shaped
// curve approximating a thumbprint viewed tip-up, slightly taller than wide
// and marginally fuller above the midline. All geometry is in canvas cell
// coordinates and fully deterministic.
type silhouette struct {
	cx, cy float64 // center
	rx     float64 // horizontal semi-axis
	ryUp   float64 // vertical semi-axis above center
	ryDown float64 // vertical semi-axis below center
}

// Semi-axis proportions relative to the QR grid size. At scale 1.0 the
// silhouette strictly contains a centered grid (corner check: the farthest
// dark module sits at ~0.71·(n/2) of the diagonal, inside all three axes).
const (
	silhouetteRX     = 0.72
	silhouetteRYUp   = 0.80
	silhouetteRYDown = 0.74

	// canvasFactor sizes the square canvas so the tallest silhouette axis
	// fits with a one-cell margin.
	canvasFactor = 1.64
)

func newSilhouette(canvas int, gridSize int, scale float64) silhouette {
	half := float64(canvas) / 2
	n := float64(gridSize)
	return silhouette{
		cx:     half,
		cy:     half,
		rx:     silhouetteRX * n * scale,
		ryUp:   silhouetteRYUp * n * scale,
		ryDown: silhouetteRYDown * n * scale,
	}
}

// norm returns the normalized radial distance of a cell center: <= 1 means
// inside the outline.
func (s silhouette) norm(x, y int) float64 {
	dx := (float64(x) + 0.5 - s.cx) / s.rx
	ry := s.ryDown
	if float64(y)+0.5 < s.cy {
		ry = s.ryUp
	}
	dy := (float64(y) + 0.5 - s.cy) / ry
	return math.Sqrt(dx*dx + dy*dy)
}

func (s silhouette) contains(x, y int) bool {
	return s.norm(x, y) <= 1.0
}

// onOutline marks the thin band rendered as the silhouette's edge.
func (s silhouette) onOutline(x, y int) bool {
	n := s.norm(x, y)
	return n > 0.96 && n <= 1.0
}

// ridgeCell marks cells belonging to the concentric ridge texture that fills
// the silhouette around the payload area, evoking fingerprint whorls. Every
// third normalized ring is drawn.
func (s silhouette) ridgeCell(x, y int) bool {
	n := s.norm(x, y)
	if n > 0.96 {
		return false
	}
	ring := int(n * 24)
	return ring%3 == 0
}
