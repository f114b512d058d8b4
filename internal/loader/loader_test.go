package loader

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anitrip/internal/imaging"
)

func imageServer(t *testing.T) *httptest.Server {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 99, G: 50, B: 10, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	payload := buf.Bytes()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
}

func TestLoadDeliversCallback(t *testing.T) {
	srv := imageServer(t)
	defer srv.Close()

	fetcher := imaging.NewFetcher(2*time.Second, 8)
	l := New(fetcher, 2, 2*time.Second)
	defer l.Close()

	done := make(chan image.Image, 1)
	l.Load(srv.URL, 8, 8, nil, func(img image.Image) {
		done <- img
	})

	select {
	case img := <-done:
		if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 8 {
			t.Errorf("callback image size = %v, want 8x8 cover fit", img.Bounds())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("callback was never invoked")
	}
}

func TestLoadFailureSkipsCallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	fetcher := imaging.NewFetcher(1*time.Second, 8)
	l := New(fetcher, 1, 1*time.Second)

	called := make(chan struct{}, 1)
	l.Load(srv.URL, 8, 8, nil, func(image.Image) {
		called <- struct{}{}
	})
	l.Close() // ワーカーの完了を待つ

	select {
	case <-called:
		t.Error("failed load must not invoke the callback")
	default:
	}
}

func TestLoadAfterCloseIsDropped(t *testing.T) {
	srv := imageServer(t)
	defer srv.Close()

	fetcher := imaging.NewFetcher(1*time.Second, 8)
	l := New(fetcher, 1, 1*time.Second)
	l.Close()

	called := make(chan struct{}, 1)
	l.Load(srv.URL, 8, 8, nil, func(image.Image) {
		called <- struct{}{}
	})

	select {
	case <-called:
		t.Error("load after Close must be dropped")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestCancelBeforeFetchSkipsCallback(t *testing.T) {
	// 最初のリクエストでワーカーを塞ぎ、その間に次のリクエストを取り消す
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
		var buf bytes.Buffer
		_ = png.Encode(&buf, img)
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	fetcher := imaging.NewFetcher(5*time.Second, 8)
	l := New(fetcher, 1, 5*time.Second)

	first := make(chan struct{}, 1)
	l.Load(srv.URL+"/a", 4, 4, nil, func(image.Image) {
		first <- struct{}{}
	})

	cancelled := make(chan struct{}, 1)
	id := l.Load(srv.URL+"/b", 4, 4, nil, func(image.Image) {
		cancelled <- struct{}{}
	})
	l.Cancel(id)

	close(release)
	l.Close() // キューが捌けるのを待つ

	select {
	case <-first:
	default:
		t.Error("uncancelled request must still deliver its callback")
	}
	select {
	case <-cancelled:
		t.Error("cancelled request must not invoke the callback")
	default:
	}
}

func TestCancelDuringFetchSuppressesCallback(t *testing.T) {
	// フェッチ開始後の取り消しでも結果は捨てられる
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
		var buf bytes.Buffer
		_ = png.Encode(&buf, img)
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	fetcher := imaging.NewFetcher(5*time.Second, 8)
	l := New(fetcher, 1, 5*time.Second)

	called := make(chan struct{}, 1)
	id := l.Load(srv.URL, 4, 4, nil, func(image.Image) {
		called <- struct{}{}
	})

	<-started
	l.Cancel(id)
	close(release)
	l.Close()

	select {
	case <-called:
		t.Error("request cancelled mid-fetch must not invoke the callback")
	default:
	}
}

func TestLoadEmptyURLIgnored(t *testing.T) {
	fetcher := imaging.NewFetcher(1*time.Second, 8)
	l := New(fetcher, 1, 1*time.Second)
	defer l.Close()

	// 何も起きないことだけ確認（パニックしない）
	l.Load("", 8, 8, nil, func(image.Image) {
		t.Error("callback must not fire for empty url")
	})
	time.Sleep(50 * time.Millisecond)
}
