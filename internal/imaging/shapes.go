package imaging

import (
	"image/color"
	"image/draw"
)

// FillCircle 中心 (cx, cy)・半径 r の塗りつぶし円を描く
func FillCircle(dst draw.Image, cx, cy, r int, c color.NRGBA) {
	if r <= 0 {
		return
	}
	r2 := r * r
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r2 {
				blendPixel(dst, cx+dx, cy+dy, c)
			}
		}
	}
}

// StrokeCircle 中心 (cx, cy)・半径 r・線幅 width の円環を描く
func StrokeCircle(dst draw.Image, cx, cy, r, width int, c color.NRGBA) {
	if r <= 0 {
		return
	}
	if width <= 0 {
		width = 1
	}
	inner := r - width
	if inner < 0 {
		inner = 0
	}
	outer2 := r * r
	inner2 := inner * inner
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			d2 := dx*dx + dy*dy
			if d2 <= outer2 && d2 >= inner2 {
				blendPixel(dst, cx+dx, cy+dy, c)
			}
		}
	}
}

// FillTriangle 3頂点の塗りつぶし三角形を描く（地図ピンの脚など）
func FillTriangle(dst draw.Image, x1, y1, x2, y2, x3, y3 int, c color.NRGBA) {
	minX := min3(x1, x2, x3)
	maxX := max3(x1, x2, x3)
	minY := min3(y1, y2, y3)
	maxY := max3(y1, y2, y3)

	// 重心座標の符号判定で内側かどうかを調べる
	edge := func(ax, ay, bx, by, px, py int) int {
		return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
	}
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			d1 := edge(x1, y1, x2, y2, x, y)
			d2 := edge(x2, y2, x3, y3, x, y)
			d3 := edge(x3, y3, x1, y1, x, y)
			hasNeg := d1 < 0 || d2 < 0 || d3 < 0
			hasPos := d1 > 0 || d2 > 0 || d3 > 0
			if !(hasNeg && hasPos) {
				blendPixel(dst, x, y, c)
			}
		}
	}
}

func blendPixel(dst draw.Image, x, y int, c color.NRGBA) {
	b := dst.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return
	}
	dst.Set(x, y, c)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func max3(a, b, c int) int {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}
