// Package security はユーザー入力のサニタイズを提供する。
//
// 製品名やテストケースのタイトルのような単一行テキストは全タグを除去し、
// テストケースの説明のような複数行テキストは許可リストのタグのみを残す。
package security

import (
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer はユーザー入力テキストのサニタイズ機能のインターフェース。
type Sanitizer interface {
	// Text は全てのHTMLタグを除去したプレーンテキストを返す。前後の空白も除去する。
	Text(raw string) string
	// RichText は許可タグ（p, br, a, ul, ol, li, blockquote, pre, code, strong, em）のみを残す。
	RichText(raw string) string
}

// InputSanitizer はbluemondayのポリシーによるSanitizer実装。
// ポリシーは生成後に変更しないため、並行利用して問題ない。
type InputSanitizer struct {
	strict *bluemonday.Policy
	rich   *bluemonday.Policy
}

// NewInputSanitizer はInputSanitizerを生成する。
// RichTextのポリシー:
//   - 許可タグ: p, br, a, ul, ol, li, blockquote, pre, code, strong, em
//   - aのhref: httpsスキームのみ。target="_blank" と rel="noopener noreferrer" を付与
//   - script, style, iframe および on* 属性は除去
func NewInputSanitizer() *InputSanitizer {
	rich := bluemonday.NewPolicy()
	rich.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)
	rich.AllowAttrs("href").OnElements("a")
	rich.AllowRelativeURLs(false)
	rich.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return u.Host != ""
	})
	rich.AddTargetBlankToFullyQualifiedLinks(true)
	rich.RequireNoReferrerOnLinks(true)

	return &InputSanitizer{
		strict: bluemonday.StrictPolicy(),
		rich:   rich,
	}
}

// Text は全てのHTMLタグを除去したプレーンテキストを返す。
// bluemondayがエスケープした文字実体は元の文字に戻す（JSON出力時に二重エスケープしないため）。
func (s *InputSanitizer) Text(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.strict.Sanitize(raw)))
}

// RichText は許可タグのみを残したHTMLを返す。
func (s *InputSanitizer) RichText(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(s.rich.Sanitize(raw))
}

// compile-time interface check
var _ Sanitizer = (*InputSanitizer)(nil)
