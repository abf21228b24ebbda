// internal/seal/encoder.go
package seal

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/verdantcare/wellness-backend/internal/apperrors"
	"github.com/verdantcare/wellness-backend/internal/utils"
)

// payloadPrefix is the fixed encoding of a product identity inside the seal.
// Changing it invalidates every previously issued seal hash.
const payloadPrefix = "verdantcare:product:v1:"

type Config struct {
	// SilhouetteScale shrinks or grows the outline relative to the QR grid.
	// At the default 1.0 the outline contains the whole grid; smaller values
	// clip edge modules and exercise the relocation fallback.
	SilhouetteScale float64

	// MaxRelocatedFraction bounds how many dark data modules may be moved
	// before the symbol is considered undecodable.
	MaxRelocatedFraction float64

	// CellPixels is the rendered size of one module.
	CellPixels int

	RecoveryLevel qrcode.RecoveryLevel
}

func DefaultConfig() Config {
	return Config{
		SilhouetteScale:      1.0,
		MaxRelocatedFraction: 0.15,
		CellPixels:           4,
		RecoveryLevel:        qrcode.High,
	}
}

type Encoder struct {
	cfg Config
}

func NewEncoder(cfg Config) *Encoder {
	def := DefaultConfig()
	if cfg.SilhouetteScale <= 0 {
		cfg.SilhouetteScale = def.SilhouetteScale
	}
	if cfg.MaxRelocatedFraction <= 0 {
		cfg.MaxRelocatedFraction = def.MaxRelocatedFraction
	}
	if cfg.CellPixels <= 0 {
		cfg.CellPixels = def.CellPixels
	}
	return &Encoder{cfg: cfg}
}

// Artifact is the rendered seal for one product.
type Artifact struct {
	PayloadHash string
	PNG         []byte
	Relocated   int
}

// Payload returns the canonical seal payload for a product id.
func Payload(productID uuid.UUID) string {
	return payloadPrefix + productID.String()
}

// PayloadHash returns the content-address of a product's seal. Re-encoding
// the same product always reproduces it, which is what makes tamper checks
// a pure re-hash.
func PayloadHash(productID uuid.UUID) string {
	return utils.HashString(Payload(productID))
}

// Encode deterministically produces the seal artifact for a product: the QR
// module matrix of the payload remapped onto the thumbprint silhouette. Dark
// data modules falling outside the outline relocate to the nearest free
// in-bounds cell; structural modules may not move. Either condition failing
// returns ErrEncodingFailure before any state is touched.
func (e *Encoder) Encode(productID uuid.UUID) (*Artifact, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("%w: empty product id", apperrors.ErrEncodingFailure)
	}

	payload := Payload(productID)
	qr, err := qrcode.New(payload, e.cfg.RecoveryLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: qr generation: %v", apperrors.ErrEncodingFailure, err)
	}
	qr.DisableBorder = true
	grid := qr.Bitmap()
	n := len(grid)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty qr matrix", apperrors.ErrEncodingFailure)
	}

	canvas := int(math.Ceil(float64(n) * canvasFactor))
	offset := (canvas - n) / 2
	outline := newSilhouette(canvas, n, e.cfg.SilhouetteScale)

	// First pass: place in-bounds dark modules, collect strays.
	occupied := make(map[[2]int]bool, n*n)
	var strays [][2]int
	darkData := 0
	for my := 0; my < n; my++ {
		for mx := 0; mx < n; mx++ {
			if !grid[my][mx] {
				continue
			}
			structural := isStructural(mx, my, n)
			if !structural {
				darkData++
			}
			cx, cy := offset+mx, offset+my
			if outline.contains(cx, cy) {
				occupied[[2]int{cx, cy}] = true
				continue
			}
			if structural {
				return nil, fmt.Errorf("%w: structural module (%d,%d) outside silhouette", apperrors.ErrEncodingFailure, mx, my)
			}
			strays = append(strays, [2]int{cx, cy})
		}
	}

	if darkData > 0 && float64(len(strays)) > e.cfg.MaxRelocatedFraction*float64(darkData) {
		return nil, fmt.Errorf("%w: %d of %d data modules outside silhouette", apperrors.ErrEncodingFailure, len(strays), darkData)
	}

	// Second pass: relocate strays to the nearest free in-bounds cell.
	for _, stray := range strays {
		cell, ok := nearestFreeCell(stray, canvas, outline, occupied)
		if !ok {
			return nil, fmt.Errorf("%w: no in-bounds cell for module at (%d,%d)", apperrors.ErrEncodingFailure, stray[0], stray[1])
		}
		occupied[cell] = true
	}

	pngBytes, err := e.render(canvas, n, offset, outline, occupied)
	if err != nil {
		return nil, fmt.Errorf("%w: render: %v", apperrors.ErrEncodingFailure, err)
	}

	return &Artifact{
		PayloadHash: utils.HashString(payload),
		PNG:         pngBytes,
		Relocated:   len(strays),
	}, nil
}

// isStructural reports whether a module belongs to the symbol's required
// structure: the three finder patterns or the timing lines.
func isStructural(x, y, n int) bool {
	inFinder := func(ox, oy int) bool {
		return x >= ox && x < ox+7 && y >= oy && y < oy+7
	}
	if inFinder(0, 0) || inFinder(n-7, 0) || inFinder(0, n-7) {
		return true
	}
	return x == 6 || y == 6
}

// nearestFreeCell walks outward in square rings from the stray position and
// returns the first unoccupied in-bounds cell. Scan order inside a ring is
// fixed, so the fallback is deterministic.
func nearestFreeCell(stray [2]int, canvas int, outline silhouette, occupied map[[2]int]bool) ([2]int, bool) {
	for radius := 1; radius < canvas; radius++ {
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if max(abs(dx), abs(dy)) != radius {
					continue
				}
				cell := [2]int{stray[0] + dx, stray[1] + dy}
				if cell[0] < 0 || cell[0] >= canvas || cell[1] < 0 || cell[1] >= canvas {
					continue
				}
				if occupied[cell] || !outline.contains(cell[0], cell[1]) {
					continue
				}
				return cell, true
			}
		}
	}
	return [2]int{}, false
}

func (e *Encoder) render(canvas, gridSize, offset int, outline silhouette, occupied map[[2]int]bool) ([]byte, error) {
	px := e.cfg.CellPixels
	img := image.NewRGBA(image.Rect(0, 0, canvas*px, canvas*px))

	white := color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	black := color.RGBA{0x00, 0x00, 0x00, 0xFF}
	ridge := color.RGBA{0xC8, 0xC8, 0xC8, 0xFF}
	edge := color.RGBA{0x55, 0x55, 0x55, 0xFF}

	gridEnd := offset + gridSize
	for y := 0; y < canvas; y++ {
		for x := 0; x < canvas; x++ {
			c := white
			switch {
			case occupied[[2]int{x, y}]:
				c = black
			case outline.onOutline(x, y):
				c = edge
			case x >= offset && x < gridEnd && y >= offset && y < gridEnd:
				// Keep the payload area clear of texture for scannability.
			case outline.ridgeCell(x, y):
				c = ridge
			}
			fillCell(img, x, y, px, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fillCell(img *image.RGBA, cx, cy, px int, c color.RGBA) {
	for y := cy * px; y < (cy+1)*px; y++ {
		for x := cx * px; x < (cx+1)*px; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
