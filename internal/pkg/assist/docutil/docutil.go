// Package docutil 提供文档文件处理相关的工具函数。
package docutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IndexableExtensions 索引流水线支持的文件扩展名。
var IndexableExtensions = []string{".pdf", ".md", ".txt"}

// FindFiles 在目录中递归查找匹配指定扩展名的文件。
// extensions 是文件扩展名列表，如 []string{".pdf", ".md"}。
func FindFiles(dir string, extensions []string) ([]string, error) {
	var files []string
	extMap := make(map[string]bool)
	for _, ext := range extensions {
		extMap[strings.ToLower(ext)] = true
	}

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			ext := strings.ToLower(filepath.Ext(path))
			if extMap[ext] {
				files = append(files, path)
			}
		}
		return nil
	})

	return files, err
}

// EnsureDir 确保目录存在，如果不存在则创建。
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// FileExists 检查文件是否存在。
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DirExists 检查目录是否存在。
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// SaveUpload 将上传的文件内容写入数据目录并返回最终路径。
// 文件名只取 base 部分，防止路径穿越。
func SaveUpload(dataDir, name string, data []byte) (string, error) {
	if err := EnsureDir(dataDir); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}

	base := filepath.Base(name)
	if base == "." || base == string(os.PathSeparator) || base == "" {
		return "", fmt.Errorf("invalid upload name: %q", name)
	}

	path := filepath.Join(dataDir, base)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}
