package scene

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
)

// ErrDataUnavailable データセットが読めなかったことを示す（致命的ではない）
var ErrDataUnavailable = errors.New("scene dataset unavailable")

// Repository 聖地データの読み込みと検索
type Repository struct {
	scenes []Scene
}

// NewRepository path のJSONデータセットを読み込む。
// ファイルが無い・壊れている場合は警告ログを出して空のリポジトリを返す。
// 呼び出し側は空の結果を正常な入力として扱うこと。
func NewRepository(path string) *Repository {
	scenes, err := loadDataset(path)
	if err != nil {
		log.Printf("警告: %v", err)
		return &Repository{}
	}
	return &Repository{scenes: scenes}
}

func loadDataset(path string) ([]Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrDataUnavailable, err)
	}
	var scenes []Scene
	if err := json.Unmarshal(data, &scenes); err != nil {
		return nil, errors.Join(ErrDataUnavailable, err)
	}
	return scenes, nil
}

// LoadAll 全ての聖地を返す
func (r *Repository) LoadAll() []Scene {
	return r.scenes
}

// Search name / cn の部分一致検索（大文字小文字を無視）。
// 空キーワードは全件を返す。欠損フィールドはマッチしない。
func (r *Repository) Search(keyword string) []Scene {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return r.scenes
	}
	kw := strings.ToLower(keyword)
	var result []Scene
	for _, s := range r.scenes {
		if strings.Contains(strings.ToLower(s.Name), kw) ||
			(s.CN != "" && strings.Contains(strings.ToLower(s.CN), kw)) {
			result = append(result, s)
		}
	}
	return result
}

// Coordinates 座標を安全に取り出す。欠損時は ok=false
func (r *Repository) Coordinates(s Scene) (lat, lng float64, ok bool) {
	if !s.HasCoordinates() {
		return 0, 0, false
	}
	return s.Geo[0], s.Geo[1], true
}
