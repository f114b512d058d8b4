package main

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"sync/atomic"

	_ "image/jpeg"
	_ "image/png"

	"anitrip/internal/card"
	"anitrip/internal/config"
	"anitrip/internal/imaging"
	"anitrip/internal/loader"
	"anitrip/internal/passport"
	"anitrip/internal/scene"
	"anitrip/internal/version"

	"github.com/google/uuid"
)

// コマンドラインシェル。GUIシェルの代わりにコア部品を一通り叩く。
func main() {
	cfg := config.Load()

	repo := scene.NewRepository(cfg.DatasetPath)
	ledger := passport.Load(cfg.LedgerPath)
	clusters := scene.Clusters(repo.LoadAll())
	fetcher := imaging.NewFetcher(cfg.FetchTimeout, cfg.CacheSize)
	fonts := imaging.NewFontSet(cfg.FontPath)

	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		printScenes(repo.LoadAll(), ledger)
	case "search":
		if len(os.Args) < 3 {
			usage()
			return
		}
		printScenes(repo.Search(os.Args[2]), ledger)
	case "regions":
		printRegions(clusters, ledger)
	case "passport":
		printPassport(clusters, ledger)
	case "checkin":
		if len(os.Args) < 4 {
			usage()
			return
		}
		runCheckIn(cfg, repo, ledger, fetcher, fonts, os.Args[2], os.Args[3])
	case "prefetch":
		runPrefetch(cfg, repo, fetcher)
	case "version":
		fmt.Printf("%s %s\n", version.AppName, version.Version)
	default:
		usage()
	}
}

func usage() {
	fmt.Println("AniTrip － 聖地巡禮打卡工具")
	fmt.Println("  anitrip list                       全聖地を表示")
	fmt.Println("  anitrip search <キーワード>         名前で検索")
	fmt.Println("  anitrip regions                    地域ごとの聖地を表示")
	fmt.Println("  anitrip passport                   打卡状況と称号を表示")
	fmt.Println("  anitrip checkin <id> <写真パス>     回憶カードを生成して打卡")
	fmt.Println("  anitrip prefetch                   全聖地画像の取得を試して疎通確認")
	fmt.Println("  anitrip version                    バージョン表示")
}

func printScenes(scenes []scene.Scene, ledger *passport.Ledger) {
	if len(scenes) == 0 {
		fmt.Println("聖地データがありません")
		return
	}
	for _, s := range scenes {
		mark := "  "
		if ledger.IsVisited(s.ID) {
			mark = "✅"
		}
		fmt.Printf("%s [%s] %s (%s) %s\n", mark, s.ID, s.DisplayName(), s.Name, scene.FormatDuration(s.Seconds))
	}
}

func printRegions(clusters []scene.Cluster, ledger *passport.Ledger) {
	for _, c := range clusters {
		fmt.Printf("%s （%d件）\n", c.Name, len(c.Points))
		for _, p := range c.Points {
			mark := "  "
			if ledger.IsVisited(p.ID) {
				mark = "✅"
			}
			fmt.Printf("  %s %s\n", mark, p.DisplayName())
		}
	}
}

func printPassport(clusters []scene.Cluster, ledger *passport.Ledger) {
	fmt.Printf("打卡数: %d\n", ledger.VisitedCount())
	fmt.Printf("称号: %s\n", ledger.Title())
	fmt.Printf("訪問地域: %d\n", scene.VisitedRegionCount(clusters, ledger.IsVisited))
}

func runCheckIn(cfg *config.Config, repo *scene.Repository, ledger *passport.Ledger, fetcher *imaging.Fetcher, fonts *imaging.FontSet, id, photoPath string) {
	var target *scene.Scene
	scenes := repo.LoadAll()
	for i := range scenes {
		if scenes[i].ID == id {
			target = &scenes[i]
			break
		}
	}
	if target == nil {
		log.Fatalf("聖地 %s が見つかりません", id)
	}

	userImg, err := decodePhoto(photoPath)
	if err != nil {
		log.Fatalf("写真を読めません: %v", err)
	}

	compositor := card.NewCompositor(fetcher, fonts, ledger, cfg.OutputDir, cfg.CardScale)
	result, err := compositor.Compose(context.Background(), card.Request{
		JobID:     uuid.New(),
		Scene:     *target,
		UserImage: userImg,
	})
	if err != nil {
		log.Fatalf("カード生成に失敗: %v", err)
	}

	fmt.Printf("カードを保存しました: %s\n", result.Path)
	if result.NewCheckIn {
		fmt.Printf("打卡完了！現在の称号: %s\n", ledger.Title())
	} else {
		fmt.Println("打卡済みの聖地です（カードは更新されました）")
	}
}

// runPrefetch 全聖地画像をワーカー経由で取得し、素材の疎通を確認する。
// Ctrl-C で残りのリクエストを取り消して早めに抜けられる。
func runPrefetch(cfg *config.Config, repo *scene.Repository, fetcher *imaging.Fetcher) {
	scenes := repo.LoadAll()
	if len(scenes) == 0 {
		fmt.Println("聖地データがありません")
		return
	}

	l := loader.New(fetcher, cfg.Workers, cfg.FetchTimeout)
	var fetched atomic.Int32
	ids := make([]uuid.UUID, 0, len(scenes))
	for i := range scenes {
		if scenes[i].Image == "" {
			continue
		}
		id := l.Load(scenes[i].Image, 0, 0, nil, func(image.Image) {
			fetched.Add(1)
		})
		ids = append(ids, id)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		fmt.Println("中断。残りのリクエストを取り消します")
		for _, id := range ids {
			l.Cancel(id)
		}
	}()

	l.Close() // キューが捌けるまで待つ
	signal.Stop(sig)

	fmt.Printf("画像取得: %d/%d 件成功\n", fetched.Load(), len(ids))
	if int(fetched.Load()) < len(ids) {
		fmt.Println("取得できなかった画像はログを確認してください")
	}
}

// decodePhoto ユーザー写真のデコードはシェル側の責務
func decodePhoto(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}
