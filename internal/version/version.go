package version

const (
	// アプリのバージョン番号
	Version = "0.3.1"

	// AppName 表示用のアプリ名
	AppName = "AniTrip"
)

// PatchNotes パッチノートの内容
var PatchNotes = []string{
	"保存カードとプレビューの比率ずれを修正しました。",
	"地図ピンのキャッシュを共有オブジェクトに変更しました。",
	"聖地データが欠損していても起動できるようになりました。",
}
