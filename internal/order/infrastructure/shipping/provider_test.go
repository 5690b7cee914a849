package shipping

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFillsDefaults(t *testing.T) {
	table, err := Parse([]byte(`{"methods":[{"code":"express","name":"Exprés","price":"9.90"}]}`))
	require.NoError(t, err)
	assert.True(t, table.FreeShippingThreshold.Equal(decimal.NewFromInt(50)))
	require.Len(t, table.Methods, 1)
	assert.Equal(t, "express", table.Methods[0].Code)

	table, err = Parse([]byte(`{"free_shipping_threshold":"30"}`))
	require.NoError(t, err)
	assert.True(t, table.FreeShippingThreshold.Equal(decimal.NewFromInt(30)))
	assert.Len(t, table.Methods, 2)

	_, err = Parse([]byte(`[`))
	assert.Error(t, err)
}

func TestFileProviderMissingFileUsesDefaults(t *testing.T) {
	p, err := NewFileProvider(context.Background(), filepath.Join(t.TempDir(), "shipping.json"))
	require.NoError(t, err)
	assert.Equal(t, "Envío a domicilio", p.Table().MethodName("home"))
}

func TestFileProviderWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shipping.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"free_shipping_threshold":"50","methods":[{"code":"home","name":"Casa","price":"3"}]}`), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p, err := NewFileProvider(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "Casa", p.Table().MethodName("home"))

	done := make(chan struct{})
	go func() {
		_ = p.Watch(ctx)
		close(done)
	}()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(`{"free_shipping_threshold":"50","methods":[{"code":"home","name":"Domicilio","price":"6"}]}`), 0o644))
	assert.Eventually(t, func() bool {
		return p.Table().MethodName("home") == "Domicilio"
	}, 3*time.Second, 20*time.Millisecond)

	// 写入无效内容时保留上一次的运费表
	require.NoError(t, os.WriteFile(path, []byte(`{broken`), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, "Domicilio", p.Table().MethodName("home"))

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
