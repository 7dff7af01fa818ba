// Package maps は外部地図APIの埋め込みURLを組み立てます。
// 表示専用で、ここから地図APIの応答を解釈することはありません。
package maps

import (
	"fmt"
	"net/url"
)

const (
	embedBaseURL     = "https://www.google.com/maps/embed/v1/"
	staticMapBaseURL = "https://maps.googleapis.com/maps/api/staticmap"
)

// Embedder はAPIキーを保持して埋め込みURLを組み立てます。
type Embedder struct {
	apiKey string
}

// NewEmbedder は Embedder を作成します。キーが空の場合、URLは常に
// 空文字になり、テンプレート側で地図の表示がスキップされます。
func NewEmbedder(apiKey string) *Embedder {
	return &Embedder{apiKey: apiKey}
}

// EmbedURL は住所・都市・州から場所埋め込み用のURLを返します。
func (e *Embedder) EmbedURL(address, city, state string) string {
	if e.apiKey == "" {
		return ""
	}

	params := url.Values{}
	params.Set("key", e.apiKey)
	params.Set("q", fmt.Sprintf("%s %s %s", address, city, state))
	return embedBaseURL + "place?" + params.Encode()
}

// StaticMapURL はスナップショット用の静的地図画像のURLを返します。
func (e *Embedder) StaticMapURL(address, city, state string) string {
	if e.apiKey == "" {
		return ""
	}

	params := url.Values{}
	params.Set("key", e.apiKey)
	params.Set("center", fmt.Sprintf("%s %s %s", address, city, state))
	params.Set("zoom", "15")
	params.Set("size", "640x400")
	return staticMapBaseURL + "?" + params.Encode()
}
