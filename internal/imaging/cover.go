package imaging

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// ResizeCover はアスペクト比を保ったまま対象領域を埋めるように拡縮し、
// はみ出した軸を中央で切り落とす（CSSの object-fit: cover 相当）。
// 出力は必ず w×h になる。システム内のカバーフィットはすべてここを通すこと。
func ResizeCover(src image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w <= 0 || h <= 0 {
		return dst
	}

	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	if sw <= 0 || sh <= 0 {
		return dst
	}

	// 切り出し元の矩形を先に決めてから一回の拡縮で済ませる
	srcRatio := float64(sw) / float64(sh)
	dstRatio := float64(w) / float64(h)

	crop := sb
	if srcRatio > dstRatio {
		// 横長すぎる: 幅を詰める
		cropW := int(float64(sh) * dstRatio)
		if cropW < 1 {
			cropW = 1
		}
		left := sb.Min.X + (sw-cropW)/2
		crop = image.Rect(left, sb.Min.Y, left+cropW, sb.Max.Y)
	} else if srcRatio < dstRatio {
		// 縦長すぎる: 高さを詰める
		cropH := int(float64(sw) / dstRatio)
		if cropH < 1 {
			cropH = 1
		}
		top := sb.Min.Y + (sh-cropH)/2
		crop = image.Rect(sb.Min.X, top, sb.Max.X, top+cropH)
	}

	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, xdraw.Src, nil)
	return dst
}
