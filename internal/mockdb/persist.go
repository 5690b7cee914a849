package mockdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wyfcoding/nexoshop/pkg/logger"
	"github.com/wyfcoding/nexoshop/pkg/metrics"
)

// Persister 把内存表写回 fixture 目录
type Persister struct {
	dir     string
	metrics *metrics.Metrics
}

// NewPersister dir 为空时返回 nil，即不落盘
func NewPersister(dir string, m *metrics.Metrics) *Persister {
	if dir == "" {
		return nil
	}
	return &Persister{dir: dir, metrics: m}
}

// Dir 目标目录
func (p *Persister) Dir() string { return p.dir }

// Save 以两空格缩进的 JSON 数组写出一张表，先写临时文件再 rename
func (p *Persister) Save(ctx context.Context, s *Store, table string) error {
	records, ok := s.records(table)
	if !ok {
		return fmt.Errorf("unknown table %q", table)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode %s: %w", table, err)
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(p.dir, "."+table+"-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", table, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", table, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", table, err)
	}
	target := filepath.Join(p.dir, table+".json")
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", table, err)
	}

	logger.Debug(ctx, "mockdb table persisted", "table", table, "path", target)
	return nil
}

// SaveQuietly 写出失败时记录日志与指标，不向调用方返回错误
func (p *Persister) SaveQuietly(ctx context.Context, s *Store, table string) {
	if err := p.Save(ctx, s, table); err != nil {
		p.metrics.RecordPersistFailure(table)
		logger.Error(ctx, "mockdb persist failed", "table", table, "error", err)
	}
}

// SaveAll 写出全部表，返回第一个错误
func (p *Persister) SaveAll(ctx context.Context, s *Store) error {
	var first error
	for _, t := range TableNames() {
		if err := p.Save(ctx, s, t); err != nil && first == nil {
			first = err
		}
	}
	return first
}
