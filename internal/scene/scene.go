package scene

import (
	"encoding/json"
	"strconv"
	"strings"
)

// DefaultSeries データセットに series 欄が無い場合の既定値
const DefaultSeries = "你的名字。"

// Scene 聖地1件分のデータ。読み込み後は不変として扱う。
type Scene struct {
	ID      string
	Name    string
	CN      string // ローカライズ名。欠損時は空文字列
	Series  string
	Geo     []float64 // [lat, lng]。欠損・不正時は nil
	Seconds any       // nil / float64 / string（数値化できない元データ）
	Image   string
}

// HasCoordinates 有効な座標を持つかどうか
func (s Scene) HasCoordinates() bool {
	return len(s.Geo) >= 2
}

// DisplayName ローカライズ名があればそれを、無ければ原語名を返す
func (s Scene) DisplayName() string {
	if s.CN != "" {
		return s.CN
	}
	return s.Name
}

// UnmarshalJSON は型の揺れたデータセットを許容するデコーダ。
// id は文字列でも数値でもよく、cn の "nan"（pandas由来の欠損表現）は
// 欠損として扱い、geo や s が壊れていてもエラーにしない。
func (s *Scene) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID     json.RawMessage `json:"id"`
		Name   string          `json:"name"`
		CN     json.RawMessage `json:"cn"`
		Series string          `json:"series"`
		Geo    json.RawMessage `json:"geo"`
		S      json.RawMessage `json:"s"`
		Image  string          `json:"image"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.ID = rawToString(raw.ID)
	s.Name = raw.Name
	s.CN = decodeLocalizedName(raw.CN)
	s.Series = raw.Series
	if s.Series == "" {
		s.Series = DefaultSeries
	}
	s.Geo = decodeGeo(raw.Geo)
	s.Seconds = decodeSeconds(raw.S)
	s.Image = raw.Image
	return nil
}

// rawToString id の文字列/数値どちらの表現も文字列に揃える
func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		return num.String()
	}
	return strings.Trim(string(raw), `"`)
}

func decodeLocalizedName(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return ""
	}
	// 表形式データの欠損が "nan" 文字列として紛れ込むことがある
	if strings.EqualFold(strings.TrimSpace(str), "nan") {
		return ""
	}
	return str
}

func decodeGeo(raw json.RawMessage) []float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var geo []float64
	if err := json.Unmarshal(raw, &geo); err != nil {
		return nil
	}
	if len(geo) < 2 {
		return nil
	}
	return geo
}

func decodeSeconds(raw json.RawMessage) any {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if str == "" {
			return nil
		}
		return str
	}
	return nil
}

// FormatDuration 秒数を mm:ss（1時間以上は hh:mm:ss）に整形する。
// 欠損は "N/A"、数値化できない値はそのまま文字列で返す。
func FormatDuration(v any) string {
	switch sec := v.(type) {
	case nil:
		return "N/A"
	case float64:
		return formatSeconds(int(sec))
	case int:
		return formatSeconds(sec)
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(sec), 64); err == nil {
			return formatSeconds(int(n))
		}
		return sec
	default:
		return "N/A"
	}
}

func formatSeconds(sec int) string {
	if sec < 0 {
		sec = 0
	}
	if sec >= 3600 {
		return pad2(sec/3600) + ":" + pad2((sec%3600)/60) + ":" + pad2(sec%60)
	}
	return pad2(sec/60) + ":" + pad2(sec%60)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
