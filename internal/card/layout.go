package card

import "math"

// プレビューと保存カードの「所見即所得」を守るための配置計算。
// すべての寸法をプレビュー空間（360×540）で一度だけ丸めてから、
// 整数倍率 k を一律に掛ける。フル解像度で丸め直すと帯の高さが
// ずれてプレビューと比率が合わなくなるので、絶対にやらないこと。

const (
	// PreviewWidth / PreviewHeight プレビューのカード寸法（比率 2:3）
	PreviewWidth  = 360
	PreviewHeight = 540

	sceneBandFrac = 0.45
	userBandFrac  = 0.30
)

// Layout カード1枚分の全配置寸法。Scale した結果も同じ型で表す。
type Layout struct {
	Width  int
	Height int

	// 上から: 聖地写真 / ユーザー写真 / 情報欄
	SceneBandH int
	UserBandH  int
	InfoBandH  int

	TextX     int // 情報欄の左インセット
	TitleY    int // 情報欄上端からの各行オフセット
	SubY      int
	DateY     int
	TitleSize float64
	SubSize   float64

	StampCX     int // 右寄せスタンプの中心（CXは右端からの距離ではなく絶対座標）
	StampCY     int // 情報欄上端からのオフセット
	StampR      int
	StampRing   int
	StampTextDX int // スタンプ文字の中心からのオフセット
	StampLine1DY int
	StampLine2DY int
}

// PreviewLayout プレビュー空間の配置を返す。
// 情報欄は丸め残りをすべて引き受けるので、三帯の合計は必ず Height になる。
func PreviewLayout() Layout {
	h1 := int(math.Round(PreviewHeight * sceneBandFrac))
	h2 := int(math.Round(PreviewHeight * userBandFrac))
	return Layout{
		Width:      PreviewWidth,
		Height:     PreviewHeight,
		SceneBandH: h1,
		UserBandH:  h2,
		InfoBandH:  PreviewHeight - h1 - h2,

		TextX:     20,
		TitleY:    15,
		SubY:      50,
		DateY:     75,
		TitleSize: 18,
		SubSize:   11,

		StampCX:      PreviewWidth - 50,
		StampCY:      40,
		StampR:       35,
		StampRing:    3,
		StampTextDX:  -25,
		StampLine1DY: -10,
		StampLine2DY: 5,
	}
}

// Scale すべての線形寸法を k 倍した配置を返す。
// 帯の高さを再計算しないので、任意の k で各帯は正確に k 倍になる。
func (l Layout) Scale(k int) Layout {
	if k <= 1 {
		return l
	}
	return Layout{
		Width:      l.Width * k,
		Height:     l.Height * k,
		SceneBandH: l.SceneBandH * k,
		UserBandH:  l.UserBandH * k,
		InfoBandH:  l.InfoBandH * k,

		TextX:     l.TextX * k,
		TitleY:    l.TitleY * k,
		SubY:      l.SubY * k,
		DateY:     l.DateY * k,
		TitleSize: l.TitleSize * float64(k),
		SubSize:   l.SubSize * float64(k),

		StampCX:      l.StampCX * k,
		StampCY:      l.StampCY * k,
		StampR:       l.StampR * k,
		StampRing:    l.StampRing * k,
		StampTextDX:  l.StampTextDX * k,
		StampLine1DY: l.StampLine1DY * k,
		StampLine2DY: l.StampLine2DY * k,
	}
}

// InfoBandTop 情報欄の上端Y座標
func (l Layout) InfoBandTop() int {
	return l.SceneBandH + l.UserBandH
}
