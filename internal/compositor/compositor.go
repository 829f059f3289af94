// Package compositor arranges uploaded garment and accessory photos into the
// fixed 2x2 layout image that seeds every generation run.
package compositor

import (
	"bytes"
	"image"
	"image/color"
	stddraw "image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"tryonstudio/internal/fault"
)

// Role describes what an uploaded image contributes to the run.
type Role string

const (
	RoleGarment        Role = "garment"
	RoleAccessory      Role = "accessory"
	RoleModelReference Role = "model-reference"
)

// SourceImage is one uploaded image plus its declared role. The compositor
// only reads it.
type SourceImage struct {
	Data []byte
	Role Role
}

const (
	cellWidth   = 512
	cellHeight  = 512
	gridRows    = 2
	gridCols    = 2
	jpegQuality = 95
)

// CellCount is the fixed capacity of the layout grid.
const CellCount = gridRows * gridCols

// Compose renders garment/accessory images into one 1024x1024 JPEG. Each
// image is scaled uniformly to fit its 512x512 cell, centered on white, and
// placed in row-major order matching input order. Model-reference images are
// skipped; inputs beyond the grid capacity are dropped.
func Compose(images []SourceImage) ([]byte, error) {
	wearable := make([]SourceImage, 0, len(images))
	for _, src := range images {
		if src.Role == RoleGarment || src.Role == RoleAccessory {
			wearable = append(wearable, src)
		}
	}
	if len(wearable) == 0 {
		return nil, fault.New(fault.KindComposition, "no garment or accessory images provided")
	}
	if len(wearable) > CellCount {
		wearable = wearable[:CellCount]
	}

	canvas := image.NewRGBA(image.Rect(0, 0, gridCols*cellWidth, gridRows*cellHeight))
	stddraw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, stddraw.Src)

	for idx, src := range wearable {
		img, _, err := image.Decode(bytes.NewReader(src.Data))
		if err != nil {
			return nil, fault.Wrap(fault.KindComposition, err, "decode image %d", idx)
		}
		placeInCell(canvas, img, idx)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, canvas, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fault.Wrap(fault.KindComposition, err, "encode layout")
	}
	return buf.Bytes(), nil
}

// placeInCell scales img uniformly to fit cell idx and centers it there.
func placeInCell(canvas *image.RGBA, img image.Image, idx int) {
	row := idx / gridCols
	col := idx % gridCols

	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()
	if srcW <= 0 || srcH <= 0 {
		return
	}

	scale := min(float64(cellWidth)/float64(srcW), float64(cellHeight)/float64(srcH))
	dstW := int(float64(srcW)*scale + 0.5)
	dstH := int(float64(srcH)*scale + 0.5)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	x0 := col*cellWidth + (cellWidth-dstW)/2
	y0 := row*cellHeight + (cellHeight-dstH)/2
	target := image.Rect(x0, y0, x0+dstW, y0+dstH)

	xdraw.CatmullRom.Scale(canvas, target, img, img.Bounds(), xdraw.Over, nil)
}
