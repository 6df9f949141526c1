package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/camos-io/camos-assist/pkg/utils/httpclient"
)

// OCRClient 对接 OCR sidecar，识别 PDF 页面中的图片文字。
type OCRClient interface {
	// RecognizePage 识别指定页的图片文字，返回识别出的文本。
	RecognizePage(ctx context.Context, pdfData []byte, page int) (string, error)
}

// HTTPOCRClient 通过 JSON-over-HTTP 调用 OCR 服务。
type HTTPOCRClient struct {
	endpoint string
	client   *httpclient.Client
}

// NewOCRClient creates an OCR client for the given endpoint.
func NewOCRClient(endpoint string, timeout time.Duration) *HTTPOCRClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPOCRClient{
		endpoint: endpoint,
		client:   httpclient.NewClient(timeout, 2),
	}
}

type ocrRequest struct {
	PDF  string `json:"pdf"`
	Page int    `json:"page"`
}

type ocrResponse struct {
	Text string `json:"text"`
}

// RecognizePage sends one page to the OCR service.
func (c *HTTPOCRClient) RecognizePage(ctx context.Context, pdfData []byte, page int) (string, error) {
	body, err := json.Marshal(ocrRequest{
		PDF:  base64.StdEncoding.EncodeToString(pdfData),
		Page: page,
	})
	if err != nil {
		return "", fmt.Errorf("marshal OCR request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create OCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp ocrResponse
	if err := c.client.DoJSON(req, &resp); err != nil {
		return "", fmt.Errorf("OCR request failed: %w", err)
	}
	return resp.Text, nil
}
