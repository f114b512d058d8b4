package passport

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempLedgerPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "visited.json")
}

func TestCheckInIdempotent(t *testing.T) {
	l := Load(tempLedgerPath(t))

	added, err := l.CheckIn("1")
	if err != nil {
		t.Fatal(err)
	}
	if !added {
		t.Error("first check-in should return true")
	}

	// 2回目は no-op で false
	added, err = l.CheckIn("1")
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Error("second check-in should return false")
	}
	if got := l.VisitedCount(); got != 1 {
		t.Errorf("VisitedCount = %d, want 1", got)
	}
}

func TestLedgerPersistsAcrossLoads(t *testing.T) {
	path := tempLedgerPath(t)

	l := Load(path)
	if _, err := l.CheckIn("1"); err != nil {
		t.Fatal(err)
	}
	if _, err := l.CheckIn("7"); err != nil {
		t.Fatal(err)
	}

	reloaded := Load(path)
	if !reloaded.IsVisited("1") || !reloaded.IsVisited("7") {
		t.Error("check-ins should survive reload")
	}
	if got := reloaded.VisitedCount(); got != 2 {
		t.Errorf("VisitedCount after reload = %d, want 2", got)
	}
}

func TestLedgerFileFormat(t *testing.T) {
	path := tempLedgerPath(t)
	l := Load(path)
	if _, err := l.CheckIn("42"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var file struct {
		Visited []string `json:"visited"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		t.Fatalf("ledger file is not valid JSON: %v", err)
	}
	if len(file.Visited) != 1 || file.Visited[0] != "42" {
		t.Errorf("ledger file content = %v", file.Visited)
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	l := Load(tempLedgerPath(t))
	if got := l.VisitedCount(); got != 0 {
		t.Errorf("fresh ledger should be empty, got %d", got)
	}
}

func TestLoadCorruptFileRecoversEmpty(t *testing.T) {
	path := tempLedgerPath(t)
	if err := os.WriteFile(path, []byte("{{{"), 0644); err != nil {
		t.Fatal(err)
	}

	l := Load(path)
	if got := l.VisitedCount(); got != 0 {
		t.Errorf("corrupt ledger should recover empty, got %d", got)
	}
	// 復旧後はそのまま打卡できる
	if added, err := l.CheckIn("1"); err != nil || !added {
		t.Errorf("CheckIn after recovery = (%v, %v)", added, err)
	}
}

func TestReadLedgerCorruptReportsSentinel(t *testing.T) {
	path := tempLedgerPath(t)
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := readLedger(path); !errors.Is(err, ErrLedgerCorrupt) {
		t.Errorf("expected ErrLedgerCorrupt, got %v", err)
	}

	// ファイル無しは初回起動。壊れている扱いにはしない
	if ids, err := readLedger(filepath.Join(t.TempDir(), "none.json")); err != nil || ids != nil {
		t.Errorf("missing file = (%v, %v), want (nil, nil)", ids, err)
	}
}

func TestCheckInUnwritablePathKeepsMemoryState(t *testing.T) {
	// 保存失敗でもメモリ上は打卡済みのまま、エラーで知らせる
	l := Load(filepath.Join(tempLedgerPath(t), "impossible", "visited.json"))
	l.path = filepath.Join(os.DevNull, "visited.json") // 書き込み不能なパス

	added, err := l.CheckIn("1")
	if !added {
		t.Error("in-memory state should reflect the check-in")
	}
	if !errors.Is(err, ErrPersistenceFailed) {
		t.Errorf("expected ErrPersistenceFailed, got %v", err)
	}
	if !l.IsVisited("1") {
		t.Error("scene should remain visited in memory")
	}
}

func TestTitleForCount(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, "🌱 路人A"},
		{1, "🥉 見習巡禮者"},
		{2, "🥉 見習巡禮者"},
		{3, "🥈 資深阿宅"},
		{5, "🥇 聖地巡禮大師"},
		{9, "🥇 聖地巡禮大師"},
		{10, "🏆 二次元的神"},
		{99, "🏆 二次元的神"},
	}
	for _, tt := range tests {
		if got := TitleForCount(tt.count); got != tt.want {
			t.Errorf("TitleForCount(%d) = %q, want %q", tt.count, got, tt.want)
		}
	}
}

func TestScenarioCheckInPromotesTitle(t *testing.T) {
	l := Load(tempLedgerPath(t))
	if got := l.Title(); got != "🌱 路人A" {
		t.Fatalf("initial title = %q", got)
	}
	if _, err := l.CheckIn("1"); err != nil {
		t.Fatal(err)
	}
	if got := l.Title(); got != "🥉 見習巡禮者" {
		t.Errorf("title after first check-in = %q, want 🥉 見習巡禮者", got)
	}
}
