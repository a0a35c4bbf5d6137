// Package avatar はメールアドレスからアバターURLを導出する。
package avatar

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// gravatarBaseURL はGravatarのアバター画像エンドポイント。
const gravatarBaseURL = "https://www.gravatar.com/avatar"

// URL はメールアドレスに対応するGravatarのURLを返す。
// メールアドレスは小文字化・トリムしてからハッシュ化する。
// サイズ200px、レーティングpg、未登録時はミステリーマンのデフォルト画像。
func URL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	hash := md5.Sum([]byte(normalized))
	return fmt.Sprintf("%s/%s?s=200&r=pg&d=mm", gravatarBaseURL, hex.EncodeToString(hash[:]))
}
