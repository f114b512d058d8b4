package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// ガウスぼかしや明度調整はヒーロー背景などのUI加工用。
// どれも元画像を変更せず新しい画像を返す。

// GaussianBlur 分離可能な1次元カーネルを縦横2回適用する
func GaussianBlur(src image.Image, radius int) *image.NRGBA {
	img := toNRGBA(src)
	if radius <= 0 {
		return img
	}

	kernel := gaussianKernel(radius)
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()

	horizontal := image.NewNRGBA(img.Bounds())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, b, a float64
			for k := -radius; k <= radius; k++ {
				sx := clampInt(x+k, 0, w-1)
				c := img.NRGBAAt(sx, y)
				wgt := kernel[k+radius]
				r += float64(c.R) * wgt
				g += float64(c.G) * wgt
				b += float64(c.B) * wgt
				a += float64(c.A) * wgt
			}
			horizontal.SetNRGBA(x, y, color.NRGBA{round8(r), round8(g), round8(b), round8(a)})
		}
	}

	out := image.NewNRGBA(img.Bounds())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, b, a float64
			for k := -radius; k <= radius; k++ {
				sy := clampInt(y+k, 0, h-1)
				c := horizontal.NRGBAAt(x, sy)
				wgt := kernel[k+radius]
				r += float64(c.R) * wgt
				g += float64(c.G) * wgt
				b += float64(c.B) * wgt
				a += float64(c.A) * wgt
			}
			out.SetNRGBA(x, y, color.NRGBA{round8(r), round8(g), round8(b), round8(a)})
		}
	}
	return out
}

func gaussianKernel(radius int) []float64 {
	sigma := float64(radius) / 2
	if sigma < 1 {
		sigma = 1
	}
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// AdjustBrightness 明度を factor 倍にする（0.5 で半分の明るさ）
func AdjustBrightness(src image.Image, factor float64) *image.NRGBA {
	img := toNRGBA(src)
	if factor < 0 {
		factor = 0
	}
	out := image.NewNRGBA(img.Bounds())
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			out.SetNRGBA(x, y, color.NRGBA{
				R: scale8(c.R, factor),
				G: scale8(c.G, factor),
				B: scale8(c.B, factor),
				A: c.A,
			})
		}
	}
	return out
}

// BottomGradient 高さ startFrac の位置から下端に向かって
// 黒のグラデーション（最大 maxAlpha）をアルファ合成する
func BottomGradient(src image.Image, startFrac float64, maxAlpha uint8) *image.NRGBA {
	img := toNRGBA(src)
	b := img.Bounds()
	h := b.Dy()
	start := int(float64(h) * startFrac)
	gradH := h - start
	if gradH <= 0 {
		return img
	}

	out := image.NewNRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	for row := 0; row < gradH; row++ {
		alpha := float64(maxAlpha) * float64(row) / float64(gradH)
		y := b.Min.Y + start + row
		for x := b.Min.X; x < b.Max.X; x++ {
			c := out.NRGBAAt(x, y)
			t := alpha / 255
			out.SetNRGBA(x, y, color.NRGBA{
				R: round8(float64(c.R) * (1 - t)),
				G: round8(float64(c.G) * (1 - t)),
				B: round8(float64(c.B) * (1 - t)),
				A: c.A,
			})
		}
	}
	return out
}

func toNRGBA(src image.Image) *image.NRGBA {
	if img, ok := src.(*image.NRGBA); ok {
		return img
	}
	out := image.NewNRGBA(src.Bounds())
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}

func scale8(v uint8, factor float64) uint8 {
	return round8(float64(v) * factor)
}
