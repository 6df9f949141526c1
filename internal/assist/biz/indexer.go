package biz

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/kart-io/logger"

	"github.com/camos-io/camos-assist/internal/assist/metrics"
	"github.com/camos-io/camos-assist/internal/assist/store"
	"github.com/camos-io/camos-assist/internal/model"
	"github.com/camos-io/camos-assist/internal/pkg/assist/docutil"
	"github.com/camos-io/camos-assist/internal/pkg/assist/textutil"
	"github.com/camos-io/camos-assist/pkg/extract"
	"github.com/camos-io/camos-assist/pkg/id"
	"github.com/camos-io/camos-assist/pkg/infra/pool"
	"github.com/camos-io/camos-assist/pkg/llm"
)

// 分块约束。
const (
	// minChunkChars 短于该长度的块直接丢弃。
	minChunkChars = 20
	// maxSectionChars 章节名最大长度。
	maxSectionChars = 250
	// maxContentChars 块内容最大长度。
	maxContentChars = 65000
)

// headerRegex 匹配 Markdown 标题行。
var headerRegex = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)

// IndexerConfig 索引器配置。
type IndexerConfig struct {
	// ChunkSize 文本块大小（Unicode 字符数）。
	ChunkSize int
	// ChunkOverlap 块重叠大小。
	ChunkOverlap int
	// Collection 集合名称。
	Collection string
	// EmbeddingDim 嵌入向量维度。
	EmbeddingDim int
	// DataDir 上传文件存储目录。
	DataDir string
	// OCRMinChars 页面原生文本少于该字符数时送 OCR。
	OCRMinChars int
}

// Indexer 负责文档索引。
type Indexer struct {
	store         store.VectorStore
	embedProvider llm.EmbeddingProvider
	ocr           extract.OCRClient
	tables        extract.TableClient
	pool          *pool.Pool
	config        *IndexerConfig
	metrics       *metrics.AssistMetrics
}

// NewIndexer 创建索引器实例。ocr、tables、workerPool 均可为 nil，
// 为 nil 时相应能力关闭（目录索引降级为串行处理）。
func NewIndexer(
	vectorStore store.VectorStore,
	embedProvider llm.EmbeddingProvider,
	ocr extract.OCRClient,
	tables extract.TableClient,
	workerPool *pool.Pool,
	config *IndexerConfig,
) *Indexer {
	return &Indexer{
		store:         vectorStore,
		embedProvider: embedProvider,
		ocr:           ocr,
		tables:        tables,
		pool:          workerPool,
		config:        config,
		metrics:       metrics.Get(),
	}
}

// EnsureCollection 确保向量集合存在。
func (i *Indexer) EnsureCollection(ctx context.Context) error {
	collectionConfig := &store.CollectionConfig{
		Name:        i.config.Collection,
		Description: "Camos knowledge base collection",
		Dimension:   i.config.EmbeddingDim,
	}
	if err := i.store.CreateCollection(ctx, collectionConfig); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// IndexDirectory 索引目录中的所有文档。
// 单个文件的失败只计数并记录日志，不会中断整个索引流程。
func (i *Indexer) IndexDirectory(ctx context.Context, dir string) (*model.IndexResult, error) {
	logger.Infof("Indexing documents from: %s", dir)

	if err := i.EnsureCollection(ctx); err != nil {
		return nil, err
	}

	files, err := docutil.FindFiles(dir, docutil.IndexableExtensions)
	if err != nil {
		return nil, fmt.Errorf("failed to find files: %w", err)
	}
	logger.Infof("Found %d indexable files", len(files))

	var (
		wg          sync.WaitGroup
		totalChunks atomic.Int64
		indexed     atomic.Int64
		failed      atomic.Int64
	)

	indexOne := func(file string) {
		chunks, err := i.IndexFile(ctx, file)
		if err != nil {
			failed.Add(1)
			logger.Warnw("索引文件失败", "file", file, "error", err.Error())
			return
		}
		indexed.Add(1)
		totalChunks.Add(int64(chunks))
	}

	for _, file := range files {
		file := file
		wg.Add(1)
		task := func() {
			defer wg.Done()
			indexOne(file)
		}

		if i.pool != nil {
			if err := i.pool.Submit(task); err != nil {
				// 池不可用时降级为同步执行
				logger.Warnw("入库池不可用，降级为同步索引", "error", err.Error())
				task()
			}
		} else {
			task()
		}
	}
	wg.Wait()

	result := &model.IndexResult{
		Documents: int(indexed.Load()),
		Chunks:    int(totalChunks.Load()),
		Failed:    int(failed.Load()),
	}

	logger.Infow("Indexing completed",
		"documents", result.Documents,
		"chunks", result.Chunks,
		"failed", result.Failed,
	)
	return result, nil
}

// IndexFile 索引单个文件，返回写入的块数量。
func (i *Indexer) IndexFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		i.metrics.RecordIndexing(0, 0, err)
		return 0, fmt.Errorf("failed to read file: %w", err)
	}

	docID := id.New()
	docName := filepath.Base(path)

	var chunks []*store.Chunk
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		chunks, err = i.chunkPDF(ctx, data, docID, docName)
		if err != nil {
			i.metrics.RecordIndexing(0, 0, err)
			return 0, err
		}
	default:
		chunks = i.parseAndChunk(string(data), docID, docName, store.ChunkTypeText, 0)
	}

	if len(chunks) == 0 {
		logger.Infow("文件无可索引内容", "file", docName)
		return 0, nil
	}

	chunks = dedupeChunks(chunks)

	texts := make([]string, len(chunks))
	for idx, chunk := range chunks {
		texts[idx] = chunk.Content
	}

	embeddings, err := i.embedProvider.Embed(ctx, texts)
	if err != nil {
		i.metrics.RecordIndexing(0, 0, err)
		return 0, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return 0, fmt.Errorf("embedding count mismatch: got %d, want %d", len(embeddings), len(chunks))
	}

	for idx, chunk := range chunks {
		chunk.Embedding = embeddings[idx]
	}

	if _, err := i.store.Insert(ctx, i.config.Collection, chunks); err != nil {
		i.metrics.RecordIndexing(0, 0, err)
		return 0, fmt.Errorf("failed to insert chunks: %w", err)
	}

	i.metrics.RecordIndexing(1, len(chunks), nil)
	logger.Infow("文件索引完成", "file", docName, "chunks", len(chunks))
	return len(chunks), nil
}

// RemoveDocument 删除指定文档的全部块。
func (i *Indexer) RemoveDocument(ctx context.Context, documentID string) error {
	if documentID == "" {
		return fmt.Errorf("document id is empty")
	}
	if err := i.store.DeleteByDocument(ctx, i.config.Collection, documentID); err != nil {
		return fmt.Errorf("failed to delete document chunks: %w", err)
	}
	logger.Infow("文档已删除", "document_id", documentID)
	return nil
}

// IndexUpload 保存上传内容到数据目录并索引。
func (i *Indexer) IndexUpload(ctx context.Context, name string, data []byte) (int, error) {
	path, err := docutil.SaveUpload(i.config.DataDir, name, data)
	if err != nil {
		return 0, err
	}

	if err := i.EnsureCollection(ctx); err != nil {
		return 0, err
	}

	return i.IndexFile(ctx, path)
}

// chunkPDF 解析 PDF 内容并分块。
// 原生文本不足的页面送 OCR 识别，表格抽取独立进行，
// 两者产生的块分别标记为 image_ocr 和 table_data 类型。
func (i *Indexer) chunkPDF(ctx context.Context, data []byte, docID, docName string) ([]*store.Chunk, error) {
	pages, err := extract.PDFPages(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pdf: %w", err)
	}

	var chunks []*store.Chunk
	for _, page := range pages {
		text := strings.TrimSpace(page.Text)

		if utf8.RuneCountInString(text) >= i.config.OCRMinChars {
			chunks = append(chunks, i.parseAndChunk(text, docID, docName, store.ChunkTypeText, page.Page)...)
			continue
		}

		// 原生文本不足，页面可能是扫描图片
		if i.ocr == nil {
			if text != "" {
				chunks = append(chunks, i.parseAndChunk(text, docID, docName, store.ChunkTypeText, page.Page)...)
			}
			continue
		}

		ocrText, err := i.ocr.RecognizePage(ctx, data, page.Page)
		if err != nil {
			logger.Warnw("页面 OCR 失败", "file", docName, "page", page.Page, "error", err.Error())
			continue
		}
		i.metrics.RecordOCRPage()

		ocrText = strings.TrimSpace(ocrText)
		if ocrText == "" {
			continue
		}

		content := fmt.Sprintf("Image content from page %d:\n%s", page.Page, ocrText)
		for _, piece := range textutil.SplitIntoChunks(content, i.config.ChunkSize, i.config.ChunkOverlap) {
			if utf8.RuneCountInString(strings.TrimSpace(piece)) < minChunkChars {
				continue
			}
			chunks = append(chunks, &store.Chunk{
				ID:           textutil.HashString(piece),
				DocumentID:   docID,
				DocumentName: docName,
				Section:      fmt.Sprintf("Page %d (OCR)", page.Page),
				Type:         store.ChunkTypeImageOCR,
				Page:         page.Page,
				Content:      textutil.TruncateString(piece, maxContentChars),
			})
		}
	}

	// 表格抽取独立于文本抽取，失败不影响文本块
	if i.tables != nil {
		tables, err := i.tables.ExtractTables(ctx, data)
		if err != nil {
			logger.Warnw("表格抽取失败", "file", docName, "error", err.Error())
		} else {
			i.metrics.RecordTableExtracted(len(tables))
			for idx, table := range tables {
				md := table.Markdown()
				if utf8.RuneCountInString(strings.TrimSpace(md)) < minChunkChars {
					continue
				}
				chunks = append(chunks, &store.Chunk{
					ID:           textutil.HashString(md),
					DocumentID:   docID,
					DocumentName: docName,
					Section:      textutil.TruncateString(fmt.Sprintf("Table %d", idx+1), maxSectionChars),
					Type:         store.ChunkTypeTableData,
					Page:         table.Page,
					Content:      textutil.TruncateString(md, maxContentChars),
				})
			}
		}
	}

	return chunks, nil
}

// parseAndChunk 按 Markdown 标题切分章节后分块。
// 块 ID 由内容哈希生成，重复索引同一文件产生相同的块 ID。
func (i *Indexer) parseAndChunk(content, docID, docName, chunkType string, page int) []*store.Chunk {
	var chunks []*store.Chunk

	sections := headerRegex.Split(content, -1)
	headers := headerRegex.FindAllStringSubmatch(content, -1)

	currentSection := "Introduction"
	for idx, section := range sections {
		if idx > 0 && idx-1 < len(headers) {
			currentSection = headers[idx-1][2]
		}

		section = strings.TrimSpace(section)
		if len(section) == 0 {
			continue
		}

		sectionChunks := textutil.SplitIntoChunks(section, i.config.ChunkSize, i.config.ChunkOverlap)
		for _, chunkContent := range sectionChunks {
			if utf8.RuneCountInString(strings.TrimSpace(chunkContent)) < minChunkChars {
				continue
			}
			chunks = append(chunks, &store.Chunk{
				ID:           textutil.HashString(chunkContent),
				DocumentID:   docID,
				DocumentName: docName,
				Section:      textutil.TruncateString(currentSection, maxSectionChars),
				Type:         chunkType,
				Page:         page,
				Content:      textutil.TruncateString(chunkContent, maxContentChars),
			})
		}
	}

	return chunks
}

// dedupeChunks 去除重复内容的块，保留首次出现的顺序。
func dedupeChunks(chunks []*store.Chunk) []*store.Chunk {
	seen := make(map[string]bool, len(chunks))
	out := chunks[:0]
	for _, chunk := range chunks {
		if seen[chunk.ID] {
			continue
		}
		seen[chunk.ID] = true
		out = append(out, chunk)
	}
	return out
}
