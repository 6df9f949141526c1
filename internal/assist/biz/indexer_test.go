package biz

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camos-io/camos-assist/internal/assist/store"
	"github.com/camos-io/camos-assist/pkg/extract"
)

const mdContent = `# Getting Started

This section explains how to install and configure the Camos runtime on a new workstation.

## Calibration

Camera calibration requires a checkerboard target and at least twenty captured frames to converge.
`

func newTestIndexer(t *testing.T, embed *fakeEmbedder) (*Indexer, *store.MemoryStore) {
	t.Helper()

	ms := store.NewMemoryStore()
	idx := NewIndexer(ms, embed, nil, nil, nil, &IndexerConfig{
		ChunkSize:    120,
		ChunkOverlap: 20,
		Collection:   "docs",
		EmbeddingDim: 8,
		DataDir:      t.TempDir(),
		OCRMinChars:  40,
	})
	return idx, ms
}

func TestIndexFileMarkdown(t *testing.T) {
	embed := newFakeEmbedder(8)
	idx, ms := newTestIndexer(t, embed)
	ctx := context.Background()

	require.NoError(t, idx.EnsureCollection(ctx))

	dir := t.TempDir()
	path := filepath.Join(dir, "guide.md")
	require.NoError(t, os.WriteFile(path, []byte(mdContent), 0o644))

	chunks, err := idx.IndexFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, chunks)

	count, err := ms.GetStats(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// 章节名来自 Markdown 标题
	results, err := ms.Search(ctx, "docs", embed.embed("Camera calibration requires a checkerboard"), 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Calibration", results[0].Section)
	assert.Equal(t, store.ChunkTypeText, results[0].Type)
	assert.Equal(t, "guide.md", results[0].DocumentName)
}

func TestIndexFileDeterministicChunkIDs(t *testing.T) {
	embed := newFakeEmbedder(8)
	idx, ms := newTestIndexer(t, embed)
	ctx := context.Background()
	require.NoError(t, idx.EnsureCollection(ctx))

	dir := t.TempDir()
	path := filepath.Join(dir, "guide.md")
	require.NoError(t, os.WriteFile(path, []byte(mdContent), 0o644))

	_, err := idx.IndexFile(ctx, path)
	require.NoError(t, err)
	first, err := ms.Search(ctx, "docs", embed.embed("install"), 10)
	require.NoError(t, err)

	// 重复索引同一文件不产生新块
	_, err = idx.IndexFile(ctx, path)
	require.NoError(t, err)
	second, err := ms.Search(ctx, "docs", embed.embed("install"), 10)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	firstIDs := make(map[string]bool)
	for _, r := range first {
		firstIDs[r.ID] = true
	}
	for _, r := range second {
		assert.True(t, firstIDs[r.ID])
	}
}

func TestIndexFileDropsShortChunks(t *testing.T) {
	embed := newFakeEmbedder(8)
	idx, _ := newTestIndexer(t, embed)
	ctx := context.Background()
	require.NoError(t, idx.EnsureCollection(ctx))

	dir := t.TempDir()
	path := filepath.Join(dir, "short.txt")
	require.NoError(t, os.WriteFile(path, []byte("tiny"), 0o644))

	chunks, err := idx.IndexFile(ctx, path)
	require.NoError(t, err)
	assert.Zero(t, chunks)
}

func TestIndexDirectory(t *testing.T) {
	embed := newFakeEmbedder(8)
	idx, _ := newTestIndexer(t, embed)
	ctx := context.Background()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte(mdContent), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte(strings.Repeat("operational notes for the line. ", 10)), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.bin"), []byte("ignored"), 0o644))

	result, err := idx.IndexDirectory(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Documents)
	assert.Zero(t, result.Failed)
	assert.Greater(t, result.Chunks, 0)
}

func TestIndexDirectoryCountsFailures(t *testing.T) {
	embed := newFakeEmbedder(8)
	embed.err = errFake
	idx, _ := newTestIndexer(t, embed)
	ctx := context.Background()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte(mdContent), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte(mdContent), 0o644))

	// 嵌入失败导致每个文件失败，但目录索引本身不报错
	result, err := idx.IndexDirectory(ctx, dir)
	require.NoError(t, err)
	assert.Zero(t, result.Documents)
	assert.Equal(t, 2, result.Failed)
}

func TestIndexUpload(t *testing.T) {
	embed := newFakeEmbedder(8)
	idx, ms := newTestIndexer(t, embed)
	ctx := context.Background()

	chunks, err := idx.IndexUpload(ctx, "notes.md", []byte(mdContent))
	require.NoError(t, err)
	assert.Equal(t, 2, chunks)

	count, err := ms.GetStats(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRemoveDocument(t *testing.T) {
	embed := newFakeEmbedder(8)
	idx, ms := newTestIndexer(t, embed)
	ctx := context.Background()
	require.NoError(t, idx.EnsureCollection(ctx))

	dir := t.TempDir()
	path := filepath.Join(dir, "guide.md")
	require.NoError(t, os.WriteFile(path, []byte(mdContent), 0o644))
	_, err := idx.IndexFile(ctx, path)
	require.NoError(t, err)

	results, err := ms.Search(ctx, "docs", embed.embed("install"), 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	require.NoError(t, idx.RemoveDocument(ctx, results[0].DocumentID))

	count, err := ms.GetStats(ctx, "docs")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRemoveDocumentEmptyID(t *testing.T) {
	embed := newFakeEmbedder(8)
	idx, _ := newTestIndexer(t, embed)

	assert.Error(t, idx.RemoveDocument(context.Background(), ""))
}

type fakeOCR struct {
	text string
	err  error
}

func (f *fakeOCR) RecognizePage(_ context.Context, _ []byte, _ int) (string, error) {
	return f.text, f.err
}

type fakeTables struct {
	tables []extract.Table
	err    error
}

func (f *fakeTables) ExtractTables(_ context.Context, _ []byte) ([]extract.Table, error) {
	return f.tables, f.err
}

func TestChunkPDFWithOCRAndTables(t *testing.T) {
	embed := newFakeEmbedder(8)
	ms := store.NewMemoryStore()
	ocrText := "Wiring diagram for the safety relay, terminals X1 through X4."
	idx := NewIndexer(ms, embed,
		&fakeOCR{text: ocrText},
		&fakeTables{tables: []extract.Table{{
			Page: 1,
			Rows: [][]string{{"Parameter", "Value"}, {"Exposure", "12ms"}, {"Gain", "4.0"}},
		}}},
		nil,
		&IndexerConfig{
			ChunkSize:    200,
			ChunkOverlap: 20,
			Collection:   "docs",
			EmbeddingDim: 8,
			OCRMinChars:  40,
		})
	ctx := context.Background()
	require.NoError(t, idx.EnsureCollection(ctx))

	// 非 PDF 字节触发回退解析，页面原生文本为空，走 OCR 路径
	chunks, err := idx.chunkPDF(ctx, []byte("\x00\x01\x02"), "doc-1", "scan.pdf")
	require.NoError(t, err)

	var ocrChunks, tableChunks int
	for _, c := range chunks {
		switch c.Type {
		case store.ChunkTypeImageOCR:
			ocrChunks++
			assert.True(t, strings.HasPrefix(c.Content, "Image content from page "))
			assert.Equal(t, 1, c.Page)
		case store.ChunkTypeTableData:
			tableChunks++
			assert.Contains(t, c.Content, "| Parameter | Value |")
			assert.Contains(t, c.Content, "| --- | --- |")
		}
	}
	assert.Equal(t, 1, ocrChunks)
	assert.Equal(t, 1, tableChunks)
}

func TestChunkPDFTableFailureKeepsTextChunks(t *testing.T) {
	embed := newFakeEmbedder(8)
	ms := store.NewMemoryStore()
	idx := NewIndexer(ms, embed,
		&fakeOCR{text: strings.Repeat("recognized text from the scanned page. ", 2)},
		&fakeTables{err: errFake},
		nil,
		&IndexerConfig{
			ChunkSize:    200,
			ChunkOverlap: 20,
			Collection:   "docs",
			EmbeddingDim: 8,
			OCRMinChars:  40,
		})

	chunks, err := idx.chunkPDF(context.Background(), []byte("\x00"), "doc-1", "scan.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.Equal(t, store.ChunkTypeImageOCR, c.Type)
	}
}
