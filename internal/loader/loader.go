package loader

import (
	"context"
	"image"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"anitrip/internal/imaging"
)

// Loader UIを塞がないための非同期画像ローダ。
// 固定数のワーカーがキューを処理し、結果をコールバックで返す。
// キャッシュは共有 Fetcher 側にあるので、同じ画像の再要求は即座に返る。
// Load が返すリクエストIDで Cancel でき、取り消し後はフェッチが完了しても
// コールバックは呼ばれない。
type Loader struct {
	fetcher *imaging.Fetcher
	timeout time.Duration
	jobs    chan job

	mu      sync.Mutex
	closed  bool
	pending map[uuid.UUID]struct{}
	wg      sync.WaitGroup
}

type job struct {
	id   uuid.UUID
	url  string
	w, h int
	proc *imaging.Processor
	cb   func(image.Image)
}

// New ワーカー数 workers（既定4）のローダを起動する
func New(fetcher *imaging.Fetcher, workers int, timeout time.Duration) *Loader {
	if workers <= 0 {
		workers = 4
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	l := &Loader{
		fetcher: fetcher,
		timeout: timeout,
		jobs:    make(chan job, 64),
		pending: make(map[uuid.UUID]struct{}),
	}
	for i := 0; i < workers; i++ {
		l.wg.Add(1)
		go l.worker()
	}
	return l
}

// Load 画像を非同期に取得して cb に渡す。戻り値は Cancel に使うリクエストID。
// 失敗はログに残すだけで cb は呼ばれない（UI側は置いた仮表示のまま）。
func (l *Loader) Load(url string, w, h int, proc *imaging.Processor, cb func(image.Image)) uuid.UUID {
	id := uuid.New()
	if url == "" || cb == nil {
		return id
	}

	// closed チェックと送信を同じロック内で行い、Close との競合を防ぐ
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return id
	}

	select {
	case l.jobs <- job{id: id, url: url, w: w, h: h, proc: proc, cb: cb}:
		l.pending[id] = struct{}{}
	default:
		// キューが溢れたら捨てる。プレビュー画像はベストエフォートでよい
		log.Printf("Image load queue full, dropping request for %s", url)
	}
	return id
}

// Cancel 指定リクエストを取り消す。未処理ならフェッチ自体を省き、
// 処理中なら完了後のコールバックを抑止する。
func (l *Loader) Cancel(id uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.pending, id)
}

func (l *Loader) worker() {
	defer l.wg.Done()
	for j := range l.jobs {
		if !l.isPending(j.id) {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		img, err := l.fetcher.FetchSized(ctx, j.url, j.w, j.h, j.proc)
		cancel()
		if err != nil {
			l.finish(j.id)
			log.Printf("Image load failed: %v", err)
			continue
		}
		// フェッチ中に取り消されていたら結果を捨てる
		if !l.finish(j.id) {
			continue
		}
		j.cb(img)
	}
}

func (l *Loader) isPending(id uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.pending[id]
	return ok
}

// finish リクエストを完了扱いにする。まだ取り消されていなければ true
func (l *Loader) finish(id uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.pending[id]
	delete(l.pending, id)
	return ok
}

// Close 新規リクエストの受付を止め、処理中のワーカーを待つ
func (l *Loader) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()

	close(l.jobs)
	l.wg.Wait()
}
