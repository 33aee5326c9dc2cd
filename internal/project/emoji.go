package project

import (
	"math/rand"
	"strings"

	"github.com/forPelevin/gomoji"
)

// 新規プロジェクト名の先頭に付ける絵文字の候補。
var nameEmojis = []string{
	"🦊", "🐻", "🐼", "🐸", "🐹", "🦉", "🐳", "🦀",
	"🌵", "🍀", "🌸", "🍉", "🍩", "🎨", "🎸", "🚀",
}

func randomEmoji() string {
	return nameEmojis[rand.Intn(len(nameEmojis))]
}

// sortKey はプロジェクト名の並べ替えキーを返す。
// 先頭の絵文字で順序が乱れないよう、絵文字を取り除いた小文字で比較する。
func sortKey(name string) string {
	return strings.TrimSpace(strings.ToLower(gomoji.RemoveEmojis(name)))
}
