package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"log"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontSet フォントフェイスの供給元。設定されたフォントファイル →
// 内蔵Goフォント → basicfont の順で解決し、どれかに必ずフォールバックする。
// TODO: 内蔵Goフォントには CJK グリフが無いので、同梱フォントを検討する
type FontSet struct {
	mu     sync.Mutex
	custom *opentype.Font
	faces  map[faceKey]font.Face
}

type faceKey struct {
	size float64
	bold bool
}

var (
	gofontOnce    sync.Once
	gofontRegular *opentype.Font
	gofontBold    *opentype.Font
)

// NewFontSet customPath のフォントを優先的に使う FontSet を作る。
// 読み込みに失敗しても警告ログだけ出して内蔵フォントで続行する。
func NewFontSet(customPath string) *FontSet {
	fs := &FontSet{faces: make(map[faceKey]font.Face)}
	if customPath == "" {
		return fs
	}
	data, err := os.ReadFile(customPath)
	if err != nil {
		log.Printf("警告: フォント %s を読めません。内蔵フォントを使います: %v", customPath, err)
		return fs
	}
	parsed, err := parseFontData(data)
	if err != nil {
		log.Printf("警告: フォント %s を解析できません。内蔵フォントを使います: %v", customPath, err)
		return fs
	}
	fs.custom = parsed
	return fs
}

// parseFontData 単体の .ttf/.otf とコレクション .ttc の両方を受け付ける
func parseFontData(data []byte) (*opentype.Font, error) {
	if f, err := opentype.Parse(data); err == nil {
		return f, nil
	}
	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, err
	}
	return coll.Font(0)
}

// Face 指定サイズのフェイスを返す。失敗時は basicfont.Face7x13
func (fs *FontSet) Face(size float64, bold bool) font.Face {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	key := faceKey{size: size, bold: bold}
	if face, ok := fs.faces[key]; ok {
		return face
	}

	src := fs.custom
	if src == nil {
		src = builtinFont(bold)
	}
	if src == nil {
		return basicfont.Face7x13
	}

	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	fs.faces[key] = face
	return face
}

func builtinFont(bold bool) *opentype.Font {
	gofontOnce.Do(func() {
		var err error
		gofontRegular, err = opentype.Parse(goregular.TTF)
		if err != nil {
			log.Printf("Failed to parse goregular: %v", err)
		}
		gofontBold, err = opentype.Parse(gobold.TTF)
		if err != nil {
			log.Printf("Failed to parse gobold: %v", err)
		}
	})
	if bold && gofontBold != nil {
		return gofontBold
	}
	return gofontRegular
}

// DrawText ベースライン (x, y) から文字列を描く
func DrawText(dst draw.Image, text string, x, y int, c color.NRGBA, face font.Face) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// DrawTextTop 文字列の上端を (x, y) に合わせて描く
func DrawTextTop(dst draw.Image, text string, x, y int, c color.NRGBA, face font.Face) {
	DrawText(dst, text, x, y+face.Metrics().Ascent.Ceil(), c, face)
}

// MeasureText 文字列の描画幅（ピクセル）
func MeasureText(face font.Face, text string) int {
	return font.MeasureString(face, text).Ceil()
}
