// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer は口座名や取引の説明などユーザーが入力した自由記述から
// HTMLマークアップを取り除き、プレーンテキストとして保存できる形にする。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService は自由記述テキストのサニタイズ機能のインターフェース。
type TextSanitizerService interface {
	// Sanitize はすべてのタグを除去したプレーンテキストを返す。
	// script, styleタグは中身ごと除去する。前後の空白は取り除く。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// TextSanitizer はbluemondayのStrictPolicyを使ったTextSanitizerServiceの実装。
// ポリシーはスレッドセーフなので並行して呼び出してよい。
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerを生成する。
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize はタグを除去し、エスケープされた文字実体を元の文字に戻す。
// 保存値はHTMLではなくプレーンテキストとして扱うため、"&" などはそのまま残す。
func (s *TextSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(raw)))
}

var _ TextSanitizerService = (*TextSanitizer)(nil)
