package card

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"anitrip/internal/fsio"
	"anitrip/internal/imaging"
	"anitrip/internal/passport"
	"anitrip/internal/scene"
)

// ErrAbandoned リクエストが破棄済みで副作用を起こさなかったことを示す
var ErrAbandoned = errors.New("card request abandoned")

// ErrNoUserImage ユーザー写真が未選択のまま合成しようとした
var ErrNoUserImage = errors.New("user image is required")

var (
	cardBG     = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	titleColor = color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}
	subColor   = color.NRGBA{R: 0x64, G: 0x74, B: 0x8B, A: 0xFF}
	dateColor  = color.NRGBA{R: 0x94, G: 0xA3, B: 0xB8, A: 0xFF}
	stampColor = color.NRGBA{R: 0xEF, G: 0x44, B: 0x44, A: 0xFF}
)

const (
	stampLine1 = "ANITRIP"
	stampLine2 = "SCENE"
)

// Request 回憶カード1枚の生成依頼
type Request struct {
	JobID     uuid.UUID
	Scene     scene.Scene
	UserImage image.Image // デコード済みのユーザー写真（選択とデコードはシェル側の責務）

	CaptionPrimary   string // 空なら聖地の表示名
	CaptionSecondary string // 空なら「原語名 | 再生時間」
	DateStamp        string // 空なら今日の日付
	LocationLabel    string

	// Abandoned true を返すと合成結果を捨て、保存も打卡もしない。
	// エディタを閉じた後に完了したフェッチが副作用を起こさないための弁。
	// JobID 指定があれば Compositor.Abandon(jobID) でも同じ効果になる。
	Abandoned func() bool
}

// Result 生成結果
type Result struct {
	Path       string
	NewCheckIn bool // この生成で初めて打卡になったか
}

// Compositor 聖地写真・ユーザー写真・キャプション・スタンプを
// 1枚のPNGに合成し、保存と打卡をまとめて行う。
type Compositor struct {
	fetcher *imaging.Fetcher
	fonts   *imaging.FontSet
	ledger  *passport.Ledger
	outDir  string
	scale   int
	now     func() time.Time

	mu        sync.Mutex
	abandoned map[uuid.UUID]struct{}
}

// NewCompositor 保存倍率 scale（参照実装は3）でコンポジタを作る
func NewCompositor(fetcher *imaging.Fetcher, fonts *imaging.FontSet, ledger *passport.Ledger, outDir string, scale int) *Compositor {
	if scale < 1 {
		scale = 1
	}
	return &Compositor{
		fetcher:   fetcher,
		fonts:     fonts,
		ledger:    ledger,
		outDir:    outDir,
		scale:     scale,
		now:       time.Now,
		abandoned: make(map[uuid.UUID]struct{}),
	}
}

// Abandon 指定ジョブのカード生成を破棄する。シェルがエディタを閉じた
// ときに呼ぶ。該当 JobID の Compose は以後、保存も打卡も行わない。
func (c *Compositor) Abandon(jobID uuid.UUID) {
	if jobID == uuid.Nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.abandoned[jobID] = struct{}{}
}

func (c *Compositor) isAbandoned(req Request) bool {
	if req.Abandoned != nil && req.Abandoned() {
		return true
	}
	if req.JobID == uuid.Nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.abandoned[req.JobID]
	return ok
}

// forget ジョブ完了後に破棄フラグを掃除する
func (c *Compositor) forget(jobID uuid.UUID) {
	if jobID == uuid.Nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.abandoned, jobID)
}

// ArtifactPath 聖地IDに対応する保存先
func (c *Compositor) ArtifactPath(sceneID string) string {
	return filepath.Join(c.outDir, sceneID+".png")
}

// Compose カードを合成して保存し、聖地を打卡する。
// 取得失敗時は何も書かずにエラーを返す。保存は全合成が
// メモリ上で完了した後の最終段で、一時ファイル経由で行う。
// 保存成功後の打卡保存失敗は、成果物を残したままエラーで報告する。
func (c *Compositor) Compose(ctx context.Context, req Request) (*Result, error) {
	if req.UserImage == nil {
		return nil, ErrNoUserImage
	}
	defer c.forget(req.JobID)
	if c.isAbandoned(req) {
		return nil, ErrAbandoned
	}

	// ネットワーク取得はワーカー側で行う前提。UIスレッドから呼ばないこと。
	sceneImg, err := c.fetcher.Fetch(ctx, req.Scene.Image)
	if err != nil {
		return nil, err
	}
	if c.isAbandoned(req) {
		return nil, ErrAbandoned
	}

	encoded, err := c.render(sceneImg, req)
	if err != nil {
		return nil, err
	}

	// 副作用の直前にもう一度だけ確認する
	if c.isAbandoned(req) {
		return nil, ErrAbandoned
	}

	path := c.ArtifactPath(req.Scene.ID)
	if err := fsio.WriteFileAtomic(path, encoded); err != nil {
		return nil, fmt.Errorf("%w: %v", passport.ErrPersistenceFailed, err)
	}

	added, err := c.ledger.CheckIn(req.Scene.ID)
	if err != nil {
		// 成果物は書けている。不整合として呼び出し側に報告する
		return &Result{Path: path, NewCheckIn: added}, err
	}
	return &Result{Path: path, NewCheckIn: added}, nil
}

// render レイアウト計算はプレビュー空間で行い、倍率を一律に掛ける
func (c *Compositor) render(sceneImg image.Image, req Request) ([]byte, error) {
	layout := PreviewLayout().Scale(c.scale)

	canvas := image.NewNRGBA(image.Rect(0, 0, layout.Width, layout.Height))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: cardBG}, image.Point{}, draw.Src)

	// 1. 聖地写真（上帯）
	sceneBand := imaging.ResizeCover(sceneImg, layout.Width, layout.SceneBandH)
	draw.Draw(canvas, image.Rect(0, 0, layout.Width, layout.SceneBandH), sceneBand, image.Point{}, draw.Src)

	// 2. ユーザー写真（中帯）
	userBand := imaging.ResizeCover(req.UserImage, layout.Width, layout.UserBandH)
	draw.Draw(canvas, image.Rect(0, layout.SceneBandH, layout.Width, layout.SceneBandH+layout.UserBandH), userBand, image.Point{}, draw.Src)

	// 3. 情報欄（下帯）
	infoTop := layout.InfoBandTop()
	title := req.CaptionPrimary
	if title == "" {
		title = req.Scene.DisplayName()
	}
	sub := req.CaptionSecondary
	if sub == "" {
		sub = fmt.Sprintf("%s | %s", req.Scene.Name, scene.FormatDuration(req.Scene.Seconds))
	}
	dateStr := req.DateStamp
	if dateStr == "" {
		dateStr = c.now().Format("2006/01/02")
	}
	dateLine := dateStr
	if req.LocationLabel != "" {
		dateLine = dateStr + " • " + req.LocationLabel
	}

	titleFace := c.fonts.Face(layout.TitleSize, true)
	subFace := c.fonts.Face(layout.SubSize, false)
	imaging.DrawTextTop(canvas, title, layout.TextX, infoTop+layout.TitleY, titleColor, titleFace)
	imaging.DrawTextTop(canvas, sub, layout.TextX, infoTop+layout.SubY, subColor, subFace)
	imaging.DrawTextTop(canvas, dateLine, layout.TextX, infoTop+layout.DateY, dateColor, subFace)

	// 4. スタンプ（情報欄の右寄せ）
	cx := layout.StampCX
	cy := infoTop + layout.StampCY
	imaging.StrokeCircle(canvas, cx, cy, layout.StampR, layout.StampRing, stampColor)
	imaging.DrawTextTop(canvas, stampLine1, cx+layout.StampTextDX, cy+layout.StampLine1DY, stampColor, subFace)
	imaging.DrawTextTop(canvas, stampLine2, cx+layout.StampTextDX, cy+layout.StampLine2DY, stampColor, subFace)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
