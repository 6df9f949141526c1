// Package prompt manages the LLM prompt templates used by the service.
//
// Templates load from a YAML file and can be hot-reloaded while the
// service is running. Placeholders use the {{name}} form and are filled
// with Render.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/kart-io/logger"
	"gopkg.in/yaml.v3"
)

// Templates holds the prompt templates for every LLM-facing operation.
// Empty fields fall back to the compiled-in defaults.
type Templates struct {
	// Answer is the retrieval-answering template.
	// Placeholders: {{context}}, {{question}}.
	Answer string `yaml:"answer"`

	// Debug is the code-debugging template.
	// Placeholders: {{code_snippet}}, {{error_message}}.
	Debug string `yaml:"debug"`

	// QueryRewrite rewrites a user query for retrieval.
	// Placeholder: {{question}}.
	QueryRewrite string `yaml:"query_rewrite"`

	// HyDE generates a hypothetical answer document for embedding.
	// Placeholder: {{question}}.
	HyDE string `yaml:"hyde"`

	// Rerank scores a document against a query.
	// Placeholders: {{question}}, {{document}}.
	Rerank string `yaml:"rerank"`
}

// DefaultTemplates 返回编译期内置的模板。
func DefaultTemplates() Templates {
	return Templates{
		Answer: `You are a helpful assistant that answers questions based on the provided context.
Use the following context to answer the question. If you cannot find the answer in the context, say so.
Always cite the source documents when providing information.

Context:
{{context}}

Question: {{question}}

Answer:`,
		Debug: `You are an expert software engineer helping a user debug their code.
Analyze the code snippet and the error message, explain the root cause, and propose a fix.

Code:
{{code_snippet}}

Error:
{{error_message}}

Diagnosis and fix:`,
		QueryRewrite: `Rewrite the following question so it retrieves the most relevant technical documentation.
Keep it short and keyword-rich. Return only the rewritten question.

Question: {{question}}`,
		HyDE: `Write a short documentation paragraph that would answer the following question.
Return only the paragraph.

Question: {{question}}`,
		Rerank: `Rate how relevant the document is to the question on a scale from 0.0 to 1.0.
Return only the number.

Question: {{question}}

Document:
{{document}}`,
	}
}

// Manager 加载并热更新模板文件。
type Manager struct {
	mu        sync.RWMutex
	path      string
	templates Templates

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewManager creates a Manager backed by the given YAML file.
// A missing file is not an error: defaults are used until the file appears.
func NewManager(path string) (*Manager, error) {
	m := &Manager{
		path:      path,
		templates: DefaultTemplates(),
		done:      make(chan struct{}),
	}

	if path != "" {
		if err := m.Reload(); err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			logger.Warnw("提示词模板文件不存在，使用内置模板", "path", path)
		}
	}

	return m, nil
}

// Reload re-reads the template file. Fields absent from the file keep
// their compiled-in defaults.
func (m *Manager) Reload() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return err
	}

	loaded := DefaultTemplates()
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("解析模板文件失败: %w", err)
	}

	defaults := DefaultTemplates()
	if loaded.Answer == "" {
		loaded.Answer = defaults.Answer
	}
	if loaded.Debug == "" {
		loaded.Debug = defaults.Debug
	}
	if loaded.QueryRewrite == "" {
		loaded.QueryRewrite = defaults.QueryRewrite
	}
	if loaded.HyDE == "" {
		loaded.HyDE = defaults.HyDE
	}
	if loaded.Rerank == "" {
		loaded.Rerank = defaults.Rerank
	}

	m.mu.Lock()
	m.templates = loaded
	m.mu.Unlock()

	return nil
}

// Watch starts watching the template file for changes.
// Editors often replace files via rename, so the parent directory is
// watched and events are filtered by name.
func (m *Manager) Watch() error {
	if m.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听失败: %w", err)
	}

	dir := filepath.Dir(m.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("监听目录失败: %w", err)
	}

	m.watcher = watcher

	go func() {
		target := filepath.Clean(m.path)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := m.Reload(); err != nil {
					logger.Errorw("重新加载提示词模板失败", "path", m.path, "error", err)
					continue
				}
				logger.Infof("Prompt templates reloaded: %s", m.path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warnw("模板文件监听错误", "error", err)
			case <-m.done:
				return
			}
		}
	}()

	logger.Infof("Watching prompt templates: %s", m.path)
	return nil
}

// Close stops watching the template file.
func (m *Manager) Close() error {
	close(m.done)
	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}

// Get returns a snapshot of the current templates.
func (m *Manager) Get() Templates {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.templates
}

// Answer returns the current answer template.
func (m *Manager) Answer() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.templates.Answer
}

// Debug returns the current debug template.
func (m *Manager) Debug() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.templates.Debug
}

// QueryRewrite returns the current query-rewrite template.
func (m *Manager) QueryRewrite() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.templates.QueryRewrite
}

// HyDE returns the current HyDE template.
func (m *Manager) HyDE() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.templates.HyDE
}

// Rerank returns the current rerank template.
func (m *Manager) Rerank() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.templates.Rerank
}

// Render fills {{name}} placeholders in tpl with the given values.
func Render(tpl string, vars map[string]string) string {
	out := tpl
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}
