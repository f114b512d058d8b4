package scene

import (
	"math"
	"sort"
	"strings"
)

// ClusterRadius 同じ地域とみなす座標距離（度単位の平面近似）。
// 市街地スケールでは十分な精度で、境界は排他的（ちょうど 0.02 は別地域）。
const ClusterRadius = 0.02

// ClusterSuffix 地域名に付ける接尾辞
const ClusterSuffix = " 周邊"

// Cluster 地理的にまとまった聖地のグループ
type Cluster struct {
	Name   string
	Points []Scene
}

// Clusters 貪欲法で聖地を地域ごとにまとめる。
// 先頭から種を取り、半径内の未割り当てを同じ地域に入れる。
// 座標の無い聖地はどの地域にも入らず捨てられる。
// 結果はメンバー数の降順（同数は発見順を維持）。
func Clusters(scenes []Scene) []Cluster {
	if len(scenes) == 0 {
		return nil
	}

	unassigned := make([]Scene, len(scenes))
	copy(unassigned, scenes)

	var clusters []Cluster
	for len(unassigned) > 0 {
		seed := unassigned[0]
		unassigned = unassigned[1:]
		if !seed.HasCoordinates() {
			continue
		}

		points := []Scene{seed}
		remaining := unassigned[:0]
		for _, p := range unassigned {
			if p.HasCoordinates() && flatDistance(seed.Geo, p.Geo) < ClusterRadius {
				points = append(points, p)
			} else {
				remaining = append(remaining, p)
			}
		}
		unassigned = remaining

		clusters = append(clusters, Cluster{
			Name:   clusterName(seed.Name),
			Points: points,
		})
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return len(clusters[i].Points) > len(clusters[j].Points)
	})
	return clusters
}

// flatDistance 平面近似のユークリッド距離（ハーサインではない）
func flatDistance(a, b []float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return math.Sqrt(dx*dx + dy*dy)
}

// clusterName 種の名前から地域名を作る。
// 最初の空白までを取り、「駅」以降を落として接尾辞を付ける。
func clusterName(seedName string) string {
	token := seedName
	if i := strings.Index(token, " "); i >= 0 {
		token = token[:i]
	}
	if i := strings.Index(token, "駅"); i >= 0 {
		token = token[:i]
	}
	return token + ClusterSuffix
}

// IndexByScene 聖地ID→地域名の索引を作る
func IndexByScene(clusters []Cluster) map[string]string {
	index := make(map[string]string)
	for _, c := range clusters {
		for _, p := range c.Points {
			index[p.ID] = c.Name
		}
	}
	return index
}

// VisitedRegionCount 1件でも打卡済みの聖地を含む地域の数
func VisitedRegionCount(clusters []Cluster, isVisited func(id string) bool) int {
	count := 0
	for _, c := range clusters {
		for _, p := range c.Points {
			if isVisited(p.ID) {
				count++
				break
			}
		}
	}
	return count
}
