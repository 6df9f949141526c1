// Package faq 提供基于 Excel 工作簿的 FAQ 知识库。
//
// 已解答问题与待解答问题分别存放在两个 .xlsx 文件中，
// 文件在首次写入时自动创建表头，所有写入通过临时文件加
// 重命名完成，避免写到一半的文件被读到。
package faq

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/camos-io/camos-assist/internal/model"
)

// 工作簿列布局。
var (
	faqHeader     = []interface{}{"id", "question", "answer", "timestamp", "created_by"}
	pendingHeader = []interface{}{"id", "question", "timestamp", "asked_by"}
)

// Store 持久化 FAQ 与待解答问题的 Excel 工作簿。
// 所有读写由互斥锁串行化。
type Store struct {
	faqPath     string
	pendingPath string
	mu          sync.Mutex
}

// NewStore 创建 FAQ 存储实例。
func NewStore(faqPath, pendingPath string) *Store {
	return &Store{
		faqPath:     faqPath,
		pendingPath: pendingPath,
	}
}

// LoadFAQ 读取全部已解答条目。文件不存在时返回空列表。
func (s *Store) LoadFAQ() ([]model.FAQEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadFAQLocked()
}

// SaveFAQ 覆盖写入全部已解答条目。
func (s *Store) SaveFAQ(entries []model.FAQEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveFAQLocked(entries)
}

// LoadPending 读取全部待解答问题。文件不存在时返回空列表。
func (s *Store) LoadPending() ([]model.PendingQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadPendingLocked()
}

// SavePending 覆盖写入全部待解答问题。
func (s *Store) SavePending(questions []model.PendingQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savePendingLocked(questions)
}

// PrependPending 将问题插入待解答列表头部（最新在前）。
func (s *Store) PrependPending(q model.PendingQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	questions, err := s.loadPendingLocked()
	if err != nil {
		return err
	}
	questions = append([]model.PendingQuestion{q}, questions...)
	return s.savePendingLocked(questions)
}

// MovePendingToFAQ 将待解答问题移入 FAQ，保留原问题 ID。
// 返回新建的 FAQ 条目；id 不存在时返回 (nil, nil)。
func (s *Store) MovePendingToFAQ(id, answer, timestamp, createdBy string) (*model.FAQEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	questions, err := s.loadPendingLocked()
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, q := range questions {
		if q.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}

	entry := model.FAQEntry{
		ID:        questions[idx].ID,
		Question:  questions[idx].Question,
		Answer:    answer,
		Timestamp: timestamp,
		CreatedBy: createdBy,
	}

	entries, err := s.loadFAQLocked()
	if err != nil {
		return nil, err
	}
	// FAQ 同样保持最新在前
	entries = append([]model.FAQEntry{entry}, entries...)
	if err := s.saveFAQLocked(entries); err != nil {
		return nil, err
	}

	questions = append(questions[:idx], questions[idx+1:]...)
	if err := s.savePendingLocked(questions); err != nil {
		return nil, err
	}

	return &entry, nil
}

func (s *Store) loadFAQLocked() ([]model.FAQEntry, error) {
	rows, err := loadRows(s.faqPath)
	if err != nil {
		return nil, err
	}

	entries := make([]model.FAQEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, model.FAQEntry{
			ID:        cell(row, 0),
			Question:  cell(row, 1),
			Answer:    cell(row, 2),
			Timestamp: cell(row, 3),
			CreatedBy: cell(row, 4),
		})
	}
	return entries, nil
}

func (s *Store) saveFAQLocked(entries []model.FAQEntry) error {
	rows := make([][]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []interface{}{e.ID, e.Question, e.Answer, e.Timestamp, e.CreatedBy})
	}
	return saveRows(s.faqPath, faqHeader, rows)
}

func (s *Store) loadPendingLocked() ([]model.PendingQuestion, error) {
	rows, err := loadRows(s.pendingPath)
	if err != nil {
		return nil, err
	}

	questions := make([]model.PendingQuestion, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, model.PendingQuestion{
			ID:        cell(row, 0),
			Question:  cell(row, 1),
			Timestamp: cell(row, 2),
			AskedBy:   cell(row, 3),
		})
	}
	return questions, nil
}

func (s *Store) savePendingLocked(questions []model.PendingQuestion) error {
	rows := make([][]interface{}, 0, len(questions))
	for _, q := range questions {
		rows = append(rows, []interface{}{q.ID, q.Question, q.Timestamp, q.AskedBy})
	}
	return saveRows(s.pendingPath, pendingHeader, rows)
}

// loadRows 读取工作簿首个工作表的数据行（去掉表头）。
func loadRows(path string) ([][]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read workbook %s: %w", path, err)
	}

	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

// saveRows 写出表头和数据行，通过临时文件加重命名保证原子性。
func saveRows(path string, header []interface{}, rows [][]interface{}) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	// excelize 按扩展名识别格式，临时文件必须以 .xlsx 结尾
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	if err := f.SaveAs(tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("save workbook: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace workbook: %w", err)
	}
	return nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
