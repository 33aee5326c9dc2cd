// Package render はAJAX部分更新用のHTML断片を組み立てる。
//
// タスク・日記の本文はMarkdownとして扱い、goldmarkでHTMLへ変換したうえで
// bluemondayの許可リストベースのポリシーでサニタイズする。
// 断片の枠組み（チェックボックス・インデント・日付ラベル）は
// サニタイズ後に付与するため、ポリシーの許可タグには含めない。
package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/hitoshi/bedrock/internal/model"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// dateLabelFormat はタスク・日記に添える日付ラベルの書式。
const dateLabelFormat = "01/02"

// Renderer はHTML断片のレンダラー。
// goldmarkとbluemondayのインスタンスを保持し、スレッドセーフに変換を行う。
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewRenderer はRendererの新しいインスタンスを生成する。
// ポリシーの内容:
//   - 許可タグ: p, br, a, ul, ol, li, blockquote, pre, code, strong, em, del
//   - script, style, iframe および on*イベント属性は許可リスト外のため除去される
//   - aタグ: target="_blank" と rel="noreferrer noopener" を強制付与
func NewRenderer() *Renderer {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em", "del",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AllowURLSchemes("https", "http")
	p.RequireNoFollowOnLinks(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	return &Renderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.Strikethrough)),
		policy: p,
	}
}

// Markdown はMarkdownテキストを安全なHTMLへ変換する。
func (r *Renderer) Markdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("Markdownの変換に失敗しました: %w", err)
	}
	return strings.TrimSpace(r.policy.Sanitize(buf.String())), nil
}

// TaskList はタスク一覧の断片を組み立てる。
// 未完了タスクに続けて、完了タスクがあれば区切り付きの完了セクションを付ける。
func (r *Renderer) TaskList(contents []*model.Content, showDate bool) (string, error) {
	var b strings.Builder
	b.WriteString(`<div class="task-list">`)

	doneStarted := false
	for _, c := range contents {
		if c.Done && !doneStarted {
			doneStarted = true
			b.WriteString(`<div class="done-divider">済</div>`)
		}
		row, err := r.TaskRow(c, showDate)
		if err != nil {
			return "", err
		}
		b.WriteString(row)
	}

	b.WriteString(`</div>`)
	return b.String(), nil
}

// TaskRow はタスク1件の断片を組み立てる。
// 深さはインデント用のクラスとして表現する。
func (r *Renderer) TaskRow(c *model.Content, showDate bool) (string, error) {
	body, err := r.Markdown(c.Body)
	if err != nil {
		return "", err
	}

	checked := ""
	if c.Done {
		checked = " checked"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<div class="task depth-%d" data-id="%s">`, c.Depth, html.EscapeString(c.ID))
	fmt.Fprintf(&b, `<input type="checkbox" class="task-check"%s>`, checked)
	fmt.Fprintf(&b, `<span class="task-body">%s</span>`, body)
	if showDate {
		fmt.Fprintf(&b, `<span class="task-date">%s</span>`, c.CreatedAt.Format(dateLabelFormat))
	}
	b.WriteString(`</div>`)
	return b.String(), nil
}

// Diary は日記の断片を組み立てる。本文の編集エリアと要約を含む。
func (r *Renderer) Diary(d *model.DiaryContent) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="diary" data-project-id="%s">`, html.EscapeString(d.ProjectID))
	fmt.Fprintf(&b, `<textarea class="diary-body">%s</textarea>`, html.EscapeString(d.Body))
	if d.Summary != "" {
		fmt.Fprintf(&b, `<div class="diary-summary">%s</div>`, html.EscapeString(d.Summary))
	}
	b.WriteString(`</div>`)
	return b.String()
}

// ProjectList はプロジェクト一覧の断片を組み立てる。
func (r *Renderer) ProjectList(projects []*model.Project, withDate bool) string {
	var b strings.Builder
	b.WriteString(`<ul class="project-list">`)
	for _, p := range projects {
		fmt.Fprintf(&b, `<li class="project" data-id="%s">%s`, html.EscapeString(p.ID), html.EscapeString(p.Name))
		if withDate {
			fmt.Fprintf(&b, `<span class="project-date">%s</span>`, p.CreatedAt.Format(dateLabelFormat))
		}
		b.WriteString(`</li>`)
	}
	b.WriteString(`</ul>`)
	return b.String()
}

// UpdatedAtFooter は更新時刻のフッター断片を返す。
func (r *Renderer) UpdatedAtFooter(t time.Time) string {
	return fmt.Sprintf(`<div class="updated-at">%s 更新</div>`, t.Format("01/02 15:04"))
}
