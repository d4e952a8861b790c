// Package preprocess applies the fixed image transform chain that the OCR
// engines are tuned against: grayscale, 2x contrast, one sharpen pass, then an
// isotropic upscale for narrow pages. The order is load-bearing: contrast
// before sharpening avoids amplifying noise, and resizing last avoids
// re-sharpening resampling artifacts.
package preprocess

import (
	"image"
	stddraw "image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/certvault/cert-extractor/constants"
)

// ContrastFactor is the fixed midtone contrast multiplier.
const ContrastFactor = 2.0

// sharpenKernel is a 3x3 unsharp kernel; divisor 16, border pixels copied
// through unfiltered.
var sharpenKernel = [9]int32{
	-2, -2, -2,
	-2, 32, -2,
	-2, -2, -2,
}

const sharpenDivisor = 16

// Apply runs the full chain. It is a pure function of the pixel content:
// identical input produces identical output.
func Apply(src image.Image) *image.Gray {
	g := Grayscale(src)
	g = AdjustContrast(g, ContrastFactor)
	g = Sharpen(g)
	return UpscaleToMinWidth(g, constants.MinOCRWidth)
}

// Grayscale converts any image to single-channel luminance.
func Grayscale(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	stddraw.Draw(dst, dst.Bounds(), src, b.Min, stddraw.Src)
	return dst
}

// AdjustContrast scales every pixel away from the image's mean luminance by
// factor, clamping to [0,255]. factor 1 is the identity.
func AdjustContrast(src *image.Gray, factor float64) *image.Gray {
	mean := meanLuminance(src)
	b := src.Bounds()
	dst := image.NewGray(b)
	for i, px := range src.Pix {
		v := mean + (float64(px)-mean)*factor
		dst.Pix[i] = clampByte(v)
	}
	return dst
}

func meanLuminance(img *image.Gray) float64 {
	if len(img.Pix) == 0 {
		return 0
	}
	var sum uint64
	for _, px := range img.Pix {
		sum += uint64(px)
	}
	// Match the reference behavior: the pivot is the integer mean.
	return float64(sum / uint64(len(img.Pix)))
}

// Sharpen applies one pass of the fixed 3x3 unsharp kernel. Border pixels are
// copied from the source unchanged.
func Sharpen(src *image.Gray) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	copy(dst.Pix, src.Pix)
	if w < 3 || h < 3 {
		return dst
	}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			var acc int32
			k := 0
			for dy := -1; dy <= 1; dy++ {
				row := (y+dy)*src.Stride + x - 1
				for dx := 0; dx < 3; dx++ {
					acc += int32(src.Pix[row+dx]) * sharpenKernel[k]
					k++
				}
			}
			dst.Pix[y*dst.Stride+x] = clampByte(float64(acc) / sharpenDivisor)
		}
	}
	return dst
}

// UpscaleToMinWidth scales the image isotropically so its width equals
// minWidth when it is narrower; wider images pass through untouched.
func UpscaleToMinWidth(src *image.Gray, minWidth int) *image.Gray {
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	if w == 0 || h == 0 || w >= minWidth {
		return src
	}
	scale := float64(minWidth) / float64(w)
	dst := image.NewGray(image.Rect(0, 0, minWidth, int(math.Round(float64(h)*scale))))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
