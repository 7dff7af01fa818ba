package web

import (
	"net/url"
	"strings"
)

// ValidURL はフォーム入力が http(s) のURLとして妥当かどうかを返します。
// 空文字は「未指定」としてここでは妥当扱いです（必須チェックは呼び出し側）。
func ValidURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
