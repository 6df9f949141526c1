// Package extract 提供 PDF 文本抽取以及 OCR、表格抽取 sidecar 的客户端。
// OCR 与表格抽取算法本身由外部服务实现，这里只做窄接口封装。
package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// PageText 一页 PDF 的纯文本。
type PageText struct {
	// Page 页码，从 1 开始。
	Page int
	// Text 该页的纯文本内容。
	Text string
}

// PDFPages extracts per-page plain text from PDF bytes.
// Pages that cannot be parsed are skipped. When no page yields any
// text, the whole file falls back to printable-rune extraction as a
// single page.
func PDFPages(data []byte) ([]PageText, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty PDF data")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fallbackPages(data), nil
	}

	var pages []PageText
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			// 保留空页占位，OCR 判定需要页码
			pages = append(pages, PageText{Page: i})
			continue
		}
		pages = append(pages, PageText{Page: i, Text: text})
	}

	if !hasText(pages) {
		return fallbackPages(data), nil
	}
	return pages, nil
}

// PDFText extracts the full plain text of PDF bytes.
func PDFText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty PDF data")
	}

	if reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data))); err == nil {
		if r, err := reader.GetPlainText(); err == nil {
			if out, err := io.ReadAll(r); err == nil && len(bytes.TrimSpace(out)) > 0 {
				return string(out), nil
			}
		}
	}
	return printableText(data), nil
}

func hasText(pages []PageText) bool {
	for _, p := range pages {
		if p.Text != "" {
			return true
		}
	}
	return false
}

func fallbackPages(data []byte) []PageText {
	text := printableText(data)
	if strings.TrimSpace(text) == "" {
		// 保留占位页，扫描件仍可按页码送 OCR
		return []PageText{{Page: 1}}
	}
	return []PageText{{Page: 1, Text: text}}
}

// printableText 从损坏或非标准 PDF 中尽力提取可打印字符。
func printableText(in []byte) string {
	var out strings.Builder
	for len(in) > 0 {
		r, size := utf8.DecodeRune(in)
		if r == utf8.RuneError && size == 1 {
			b := in[0]
			if b == '\n' || b == '\r' || b == '\t' || (b >= 32 && b < 127) {
				out.WriteByte(b)
			}
			in = in[1:]
			continue
		}
		in = in[size:]
		if isPrintableRune(r) {
			out.WriteRune(r)
		}
	}
	return out.String()
}

func isPrintableRune(r rune) bool {
	if r == '\n' || r == '\r' || r == '\t' {
		return true
	}
	return r >= 32 && r != utf8.RuneError
}
