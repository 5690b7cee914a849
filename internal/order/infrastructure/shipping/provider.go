// Package shipping 从 shipping.json 加载运费表，并在文件变化时热加载
package shipping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/nexoshop/internal/order/domain"
	"github.com/wyfcoding/nexoshop/pkg/logger"
)

type fileFormat struct {
	FreeShippingThreshold decimal.NullDecimal    `json:"free_shipping_threshold"`
	Methods               []domain.ShippingMethod `json:"methods"`
}

// Parse 解析运费表，缺失的字段使用默认值
func Parse(data []byte) (domain.ShippingTable, error) {
	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return domain.ShippingTable{}, err
	}
	table := domain.DefaultShippingTable()
	if f.FreeShippingThreshold.Valid {
		table.FreeShippingThreshold = f.FreeShippingThreshold.Decimal
	}
	if len(f.Methods) > 0 {
		table.Methods = f.Methods
	}
	return table, nil
}

// Static 固定运费表
type Static struct {
	table domain.ShippingTable
}

// NewStatic 创建固定运费表
func NewStatic(table domain.ShippingTable) *Static {
	return &Static{table: table}
}

func (s *Static) Table() domain.ShippingTable { return s.table }

// FileProvider 文件运费表，读取失败时保留上一次的有效值
type FileProvider struct {
	path  string
	mu    sync.RWMutex
	table domain.ShippingTable
}

// NewFileProvider 加载 path，文件不存在时使用默认运费表
func NewFileProvider(ctx context.Context, path string) (*FileProvider, error) {
	p := &FileProvider{path: path, table: domain.DefaultShippingTable()}
	if err := p.Reload(ctx); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return p, nil
}

// Table 当前运费表
func (p *FileProvider) Table() domain.ShippingTable {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.table
}

// Reload 重新读取文件
func (p *FileProvider) Reload(ctx context.Context) error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn(ctx, "shipping table not found, using defaults", "path", p.path)
		}
		return err
	}
	table, err := Parse(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", p.path, err)
	}

	p.mu.Lock()
	p.table = table
	p.mu.Unlock()
	logger.Info(ctx, "shipping table loaded", "path", p.path, "methods", len(table.Methods), "threshold", table.FreeShippingThreshold.String())
	return nil
}

// Watch 监听文件所在目录，文件写入或被替换时重新加载，直到 ctx 结束
func (p *FileProvider) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(p.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(p.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if err := p.Reload(ctx); err != nil {
				logger.Error(ctx, "shipping table reload failed", "path", p.path, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error(ctx, "shipping watcher error", "error", err)
		}
	}
}
