package passport

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"anitrip/internal/fsio"
)

// ErrPersistenceFailed 打卡記録の書き込みに失敗したことを示す。
// メモリ上の状態は打卡済みのまま維持される。
var ErrPersistenceFailed = errors.New("passport persistence failed")

// ErrLedgerCorrupt 打卡記録ファイルが読めない・解釈できないことを示す。
// Load は警告ログを出し、空の記録として復旧する。
var ErrLedgerCorrupt = errors.New("passport ledger corrupt")

// Ledger 打卡済み聖地IDの記録。ワーカースレッドからの同時打卡に備えて
// 読み取り・変更・保存をひとつのロックで直列化する。
type Ledger struct {
	mu      sync.Mutex
	path    string
	visited map[string]struct{}
	order   []string // 打卡順。保存形式の並びを安定させる
}

type ledgerFile struct {
	Visited []string `json:"visited"`
}

// Load path の記録を読み込む。ファイルが無ければ空（初回起動）、
// 壊れていれば警告ログを出して空として復旧する。
func Load(path string) *Ledger {
	l := &Ledger{
		path:    path,
		visited: make(map[string]struct{}),
	}

	ids, err := readLedger(path)
	if err != nil {
		log.Printf("警告: 打卡記録を空として扱います: %v", err)
		return l
	}

	for _, id := range ids {
		if _, ok := l.visited[id]; ok {
			continue
		}
		l.visited[id] = struct{}{}
		l.order = append(l.order, id)
	}
	return l
}

// readLedger 記録ファイルを読む。ファイル無しは初回起動なのでエラーにしない。
// 読めない・解釈できない場合は ErrLedgerCorrupt を重ねて返す
func readLedger(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Join(ErrLedgerCorrupt, err)
	}
	var file ledgerFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.Join(ErrLedgerCorrupt, err)
	}
	return file.Visited, nil
}

// IsVisited 打卡済みかどうか
func (l *Ledger) IsVisited(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.visited[id]
	return ok
}

// CheckIn 打卡する。未登録なら追加して保存し true を返す。
// 登録済みなら何もせず false を返す（冪等）。
// 保存に失敗してもメモリ上の追加は取り消さず、エラーで知らせる。
func (l *Ledger) CheckIn(id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.visited[id]; ok {
		return false, nil
	}
	l.visited[id] = struct{}{}
	l.order = append(l.order, id)

	if err := l.saveLocked(); err != nil {
		log.Printf("打卡記録の保存に失敗: %v", err)
		return true, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	return true, nil
}

func (l *Ledger) saveLocked() error {
	file := ledgerFile{Visited: l.order}
	if file.Visited == nil {
		file.Visited = []string{}
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	return fsio.WriteFileAtomic(l.path, data)
}

// VisitedCount 打卡済みの件数
func (l *Ledger) VisitedCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visited)
}

// TitleForCount 打卡数に応じた称号。高い閾値から順に評価する。
func TitleForCount(count int) string {
	switch {
	case count >= 10:
		return "🏆 二次元的神"
	case count >= 5:
		return "🥇 聖地巡禮大師"
	case count >= 3:
		return "🥈 資深阿宅"
	case count >= 1:
		return "🥉 見習巡禮者"
	default:
		return "🌱 路人A"
	}
}

// Title 現在の打卡数に応じた称号
func (l *Ledger) Title() string {
	return TitleForCount(l.VisitedCount())
}
