// Package id 提供基于 ULID 的标识符生成。
// ULID 按时间字典序排序，适合作为文档和问答记录的主键。
package id

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator 并发安全的 ULID 生成器。
// 同一毫秒内生成的 ID 保持单调递增。
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewGenerator creates a ULID generator backed by crypto/rand.
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Generate returns a new ULID string.
func (g *Generator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}

// GenerateN returns n ULID strings in ascending order.
func (g *Generator) GenerateN(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = g.Generate()
	}
	return ids
}

var defaultGenerator = NewGenerator()

// New returns a new ULID string from the default generator.
func New() string {
	return defaultGenerator.Generate()
}

// Parse parses a ULID string.
func Parse(s string) (ulid.ULID, error) {
	return ulid.ParseStrict(s)
}

// IsValid reports whether s is a valid ULID.
func IsValid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}

// Time returns the embedded timestamp of a ULID string.
func Time(s string) (time.Time, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(int64(u.Time())), nil
}
