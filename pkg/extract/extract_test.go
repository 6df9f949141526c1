package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableMarkdown(t *testing.T) {
	table := Table{
		Page: 2,
		Rows: [][]string{
			{"Name", "Value"},
			{"timeout", "30s"},
			{"retries", "3"},
		},
	}

	md := table.Markdown()
	assert.Contains(t, md, "| Name | Value |")
	assert.Contains(t, md, "| --- | --- |")
	assert.Contains(t, md, "| timeout | 30s |")
	assert.Contains(t, md, "| retries | 3 |")
}

func TestTableMarkdownEscapesPipes(t *testing.T) {
	table := Table{
		Rows: [][]string{
			{"Expr"},
			{"a|b"},
		},
	}

	assert.Contains(t, table.Markdown(), `a\|b`)
}

func TestTableMarkdownEmpty(t *testing.T) {
	assert.Empty(t, Table{}.Markdown())
}

func TestPDFPagesEmptyInput(t *testing.T) {
	_, err := PDFPages(nil)
	assert.Error(t, err)
}

func TestPDFPagesFallback(t *testing.T) {
	// 非 PDF 字节走可打印字符回退，作为单页返回
	pages, err := PDFPages([]byte("plain text, not a real PDF\x00\x01"))
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Page)
	assert.Contains(t, pages[0].Text, "plain text, not a real PDF")
	assert.NotContains(t, pages[0].Text, "\x00")
}

func TestPDFTextFallback(t *testing.T) {
	text, err := PDFText([]byte("hello\x02world"))
	require.NoError(t, err)
	assert.Equal(t, "helloworld", text)
}

func TestOCRClientRecognizePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PDF  string `json:"pdf"`
			Page int    `json:"page"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 3, req.Page)
		assert.NotEmpty(t, req.PDF)

		_ = json.NewEncoder(w).Encode(map[string]string{"text": "recognized text"})
	}))
	defer srv.Close()

	client := NewOCRClient(srv.URL, 5*time.Second)
	text, err := client.RecognizePage(context.Background(), []byte("%PDF-fake"), 3)
	require.NoError(t, err)
	assert.Equal(t, "recognized text", text)
}

func TestOCRClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewOCRClient(srv.URL, 5*time.Second)
	_, err := client.RecognizePage(context.Background(), []byte("%PDF-fake"), 1)
	assert.Error(t, err)
}

func TestTableClientExtractTables(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"tables": []map[string]any{
				{"page": 1, "rows": [][]string{{"h1", "h2"}, {"a", "b"}}},
			},
		})
	}))
	defer srv.Close()

	client := NewTableClient(srv.URL, 5*time.Second)
	tables, err := client.ExtractTables(context.Background(), []byte("%PDF-fake"))
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, 1, tables[0].Page)
	assert.Equal(t, [][]string{{"h1", "h2"}, {"a", "b"}}, tables[0].Rows)
}
