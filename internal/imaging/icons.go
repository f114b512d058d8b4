package imaging

import (
	"image"
	"image/color"

	lru "github.com/hashicorp/golang-lru/v2"
)

// 地図ピンとアバターの描画。アプリシェルが所有する明示的なキャッシュに
// 入れて使い回す（グローバルには持たない）。

const pinSize = 60

var (
	pinVisitedColor   = color.NRGBA{R: 0x10, G: 0xB9, B: 0x81, A: 0xFF}
	pinUnvisitedColor = color.NRGBA{R: 0xEF, G: 0x44, B: 0x44, A: 0xFF}
	avatarColor       = color.NRGBA{R: 0x25, G: 0x63, B: 0xEB, A: 0xFF}
	white             = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// IconCache 描画済みアイコンのキャッシュ
type IconCache struct {
	cache *lru.Cache[string, image.Image]
}

// NewIconCache 最大 size 件のアイコンキャッシュを作る
func NewIconCache(size int) *IconCache {
	if size <= 0 {
		size = 16
	}
	cache, _ := lru.New[string, image.Image](size)
	return &IconCache{cache: cache}
}

// PinIcon 打卡済みなら緑、未打卡なら赤の地図ピンを返す
func (ic *IconCache) PinIcon(visited bool) image.Image {
	key := "pin_unvisited"
	fill := pinUnvisitedColor
	if visited {
		key = "pin_visited"
		fill = pinVisitedColor
	}
	if img, ok := ic.cache.Get(key); ok {
		return img
	}

	img := image.NewNRGBA(image.Rect(0, 0, pinSize, pinSize))
	FillCircle(img, 30, 25, 20, fill)
	FillTriangle(img, 10, 25, 50, 25, 30, 60, fill)
	FillCircle(img, 30, 25, 10, white)

	ic.cache.Add(key, img)
	return img
}

// Avatar 頭文字入りの丸アバターを返す
func (ic *IconCache) Avatar(letter string, fonts *FontSet) image.Image {
	key := "avatar_" + letter
	if img, ok := ic.cache.Get(key); ok {
		return img
	}

	const size = 120
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	FillCircle(img, size/2, size/2, size/2, avatarColor)

	face := fonts.Face(60, true)
	textW := MeasureText(face, letter)
	metrics := face.Metrics()
	textH := metrics.Ascent.Ceil() + metrics.Descent.Ceil()
	x := (size - textW) / 2
	y := (size-textH)/2 + metrics.Ascent.Ceil()
	DrawText(img, letter, x, y, white, face)

	ic.cache.Add(key, img)
	return img
}
