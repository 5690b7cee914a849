// Package mockdb 内存数据库：从 JSON fixture 加载，按外键顺序组装，并将变更写回 JSON。
package mockdb

import (
	"errors"
	"slices"
	"sync"
)

var (
	ErrNotFound        = errors.New("mockdb: object does not exist")
	ErrMultipleObjects = errors.New("mockdb: multiple objects returned")
)

// Table 按插入顺序保存实体值的内存表，读写均返回副本
type Table[T any] struct {
	mu     sync.RWMutex
	name   string
	rows   []T
	nextID uint
	idOf   func(*T) uint
	setID  func(*T, uint)
}

// NewTable 创建空表
func NewTable[T any](name string, idOf func(*T) uint, setID func(*T, uint)) *Table[T] {
	return &Table[T]{name: name, nextID: 1, idOf: idOf, setID: setID}
}

// Name 表名，同时是 fixture 文件名
func (t *Table[T]) Name() string { return t.name }

// All 全部行
func (t *Table[T]) All() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.rows)
}

// Filter 满足条件的行
func (t *Table[T]) Filter(pred func(*T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0)
	for i := range t.rows {
		if pred(&t.rows[i]) {
			out = append(out, t.rows[i])
		}
	}
	return out
}

// Get 恰好一行，否则返回 ErrNotFound 或 ErrMultipleObjects
func (t *Table[T]) Get(pred func(*T) bool) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var (
		found T
		n     int
	)
	for i := range t.rows {
		if pred(&t.rows[i]) {
			found = t.rows[i]
			n++
		}
	}
	switch n {
	case 0:
		var zero T
		return zero, ErrNotFound
	case 1:
		return found, nil
	default:
		var zero T
		return zero, ErrMultipleObjects
	}
}

// GetByID 按 ID 获取
func (t *Table[T]) GetByID(id uint) (T, error) {
	return t.Get(t.IDIn(id))
}

// IDIn id__in 过滤条件
func (t *Table[T]) IDIn(ids ...uint) func(*T) bool {
	return func(row *T) bool {
		return slices.Contains(ids, t.idOf(row))
	}
}

// Count 满足条件的行数，pred 为 nil 时返回总行数
func (t *Table[T]) Count(pred func(*T) bool) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if pred == nil {
		return len(t.rows)
	}
	n := 0
	for i := range t.rows {
		if pred(&t.rows[i]) {
			n++
		}
	}
	return n
}

// Len 行数
func (t *Table[T]) Len() int { return t.Count(nil) }

// NextID 下一个自动分配的 ID
func (t *Table[T]) NextID() uint {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.nextID
}

// MaxID 当前最大 ID，空表为 0
func (t *Table[T]) MaxID() uint {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var m uint
	for i := range t.rows {
		m = max(m, t.idOf(&t.rows[i]))
	}
	return m
}

// Create ID 为 0 时分配 nextID；显式 ID 保留，并把 nextID 推进到其后
func (t *Table[T]) Create(row T) T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.createLocked(row)
}

func (t *Table[T]) createLocked(row T) T {
	id := t.idOf(&row)
	if id == 0 {
		id = t.nextID
		t.setID(&row, id)
	}
	if id >= t.nextID {
		t.nextID = id + 1
	}
	t.rows = append(t.rows, row)
	return row
}

// Save 替换同 ID 的行，不存在时新建
func (t *Table[T]) Save(row T) T {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.idOf(&row)
	if id != 0 {
		for i := range t.rows {
			if t.idOf(&t.rows[i]) == id {
				t.rows[i] = row
				return row
			}
		}
	}
	return t.createLocked(row)
}

// Delete 按 ID 删除
func (t *Table[T]) Delete(id uint) bool {
	return t.DeleteWhere(t.IDIn(id)) > 0
}

// DeleteWhere 删除满足条件的行，返回删除数量
func (t *Table[T]) DeleteWhere(pred func(*T) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	before := len(t.rows)
	t.rows = slices.DeleteFunc(t.rows, func(row T) bool { return pred(&row) })
	return before - len(t.rows)
}

// Update 对满足条件的行原地修改，返回修改数量
func (t *Table[T]) Update(pred func(*T) bool, fn func(*T)) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for i := range t.rows {
		if pred(&t.rows[i]) {
			fn(&t.rows[i])
			n++
		}
	}
	return n
}

// BulkSet 整表替换，nextID = 1 + max(id)
func (t *Table[T]) BulkSet(rows []T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = slices.Clone(rows)
	var m uint
	for i := range t.rows {
		m = max(m, t.idOf(&t.rows[i]))
	}
	t.nextID = m + 1
}
