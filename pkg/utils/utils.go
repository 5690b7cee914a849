// Package utils 提供分页、slug 生成与指针等通用工具
package utils

import (
	"strconv"
	"strings"
)

// Pagination 分页信息
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination 创建分页信息，page 从 1 开始
func NewPagination(page, pageSize int, total int64) *Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &Pagination{Page: page, PageSize: pageSize, Total: total, TotalPages: totalPages}
}

// Offset 计算偏移量
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Limit 每页条数
func (p *Pagination) Limit() int {
	return p.PageSize
}

// Paginate 对切片做内存分页
func Paginate[T any](items []T, page, pageSize int) ([]T, *Pagination) {
	p := NewPagination(page, pageSize, int64(len(items)))
	start := p.Offset()
	if start >= len(items) {
		return []T{}, p
	}
	end := start + p.Limit()
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], p
}

// Slugify 小写并把空格替换为连字符
func Slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// ParseUint 解析正整数 ID，失败返回 0
func ParseUint(s string) uint {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

// Ptr 返回值的指针
func Ptr[T any](v T) *T {
	return &v
}

// Deref 解引用，nil 时返回零值
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
