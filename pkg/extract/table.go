package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/camos-io/camos-assist/pkg/utils/httpclient"
)

// Table 表格抽取服务返回的一张表。
type Table struct {
	// Page 表格所在页码，从 1 开始。
	Page int `json:"page"`
	// Rows 行数据，首行视为表头。
	Rows [][]string `json:"rows"`
}

// Markdown renders the table as a markdown table.
// The first row is treated as the header.
func (t Table) Markdown() string {
	if len(t.Rows) == 0 {
		return ""
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for _, cell := range cells {
			b.WriteString(" ")
			b.WriteString(strings.ReplaceAll(strings.TrimSpace(cell), "|", "\\|"))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}

	writeRow(t.Rows[0])
	b.WriteString("|")
	for range t.Rows[0] {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range t.Rows[1:] {
		writeRow(row)
	}
	return b.String()
}

// TableClient 对接表格抽取 sidecar。
type TableClient interface {
	// ExtractTables 抽取 PDF 中的所有表格。
	ExtractTables(ctx context.Context, pdfData []byte) ([]Table, error)
}

// HTTPTableClient 通过 JSON-over-HTTP 调用表格抽取服务。
type HTTPTableClient struct {
	endpoint string
	client   *httpclient.Client
}

// NewTableClient creates a table extraction client for the given endpoint.
func NewTableClient(endpoint string, timeout time.Duration) *HTTPTableClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPTableClient{
		endpoint: endpoint,
		client:   httpclient.NewClient(timeout, 2),
	}
}

type tableRequest struct {
	PDF string `json:"pdf"`
}

type tableResponse struct {
	Tables []Table `json:"tables"`
}

// ExtractTables sends the PDF to the table extraction service.
func (c *HTTPTableClient) ExtractTables(ctx context.Context, pdfData []byte) ([]Table, error) {
	body, err := json.Marshal(tableRequest{
		PDF: base64.StdEncoding.EncodeToString(pdfData),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal table request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create table request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp tableResponse
	if err := c.client.DoJSON(req, &resp); err != nil {
		return nil, fmt.Errorf("table extraction request failed: %w", err)
	}
	return resp.Tables, nil
}
