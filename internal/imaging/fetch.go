package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ErrAssetFetchFailed 画像の取得・デコードに失敗したことを示す
var ErrAssetFetchFailed = errors.New("asset fetch failed")

// Processor 取得後の画像加工。Name はキャッシュキーの一部になるので、
// 同じ名前は同じ加工を意味しなければならない。
type Processor struct {
	Name  string
	Apply func(image.Image) image.Image
}

// Fetcher HTTPでの画像取得。URL・サイズ・加工ごとにLRUでキャッシュし、
// 同じキーへの同時リクエストは singleflight でまとめる。
// グローバル状態は持たず、共有したい側が参照を渡す。
type Fetcher struct {
	client *http.Client
	cache  *lru.Cache[string, image.Image]
	group  singleflight.Group
}

// NewFetcher タイムアウトとキャッシュ件数を指定して作成する
func NewFetcher(timeout time.Duration, cacheSize int) *Fetcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if cacheSize <= 0 {
		cacheSize = 128
	}
	cache, _ := lru.New[string, image.Image](cacheSize)
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        32,
				MaxIdleConnsPerHost: 8,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		cache: cache,
	}
}

// Fetch 画像を取得してデコードする（加工なし、原寸）
func (f *Fetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	return f.FetchSized(ctx, url, 0, 0, nil)
}

// FetchSized 画像を取得し、w,h が正ならカバーフィットで切り抜き、
// proc があれば適用して返す。結果はキャッシュされる。
func (f *Fetcher) FetchSized(ctx context.Context, url string, w, h int, proc *Processor) (image.Image, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty url", ErrAssetFetchFailed)
	}
	key := cacheKey(url, w, h, proc)
	if img, ok := f.cache.Get(key); ok {
		return img, nil
	}

	v, err, _ := f.group.Do(key, func() (any, error) {
		img, err := f.download(ctx, url)
		if err != nil {
			return nil, err
		}
		if w > 0 && h > 0 {
			img = ResizeCover(img, w, h)
		}
		if proc != nil && proc.Apply != nil {
			img = proc.Apply(img)
		}
		f.cache.Add(key, img)
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

func (f *Fetcher) download(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetFetchFailed, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrAssetFetchFailed, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: GET %s: status %s", ErrAssetFetchFailed, url, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrAssetFetchFailed, url, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrAssetFetchFailed, url, err)
	}
	return img, nil
}

func cacheKey(url string, w, h int, proc *Processor) string {
	procName := "raw"
	if proc != nil {
		procName = proc.Name
	}
	return fmt.Sprintf("%s|%dx%d|%s", url, w, h, procName)
}
