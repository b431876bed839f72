package blockparser

import (
	"context"
	"sync"
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yacobolo/cssblocks/internal/block"
)

// countingImporter counts Import calls per identifier.
type countingImporter struct {
	Importer
	mu     sync.Mutex
	counts map[string]int
}

func (c *countingImporter) Import(ctx context.Context, identifier string) (*ImportedFile, error) {
	c.mu.Lock()
	c.counts[identifier]++
	c.mu.Unlock()
	return c.Importer.Import(ctx, identifier)
}

func (c *countingImporter) count(identifier string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[identifier]
}

func writeFiles(t *testing.T, files map[string]string) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	for name, content := range files {
		require.NoError(t, util.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

func newTestFactory(t *testing.T, files map[string]string, opts ...Option) (*Factory, *countingImporter) {
	t.Helper()
	imp := &countingImporter{
		Importer: NewFSImporter(writeFiles(t, files), nil, nil),
		counts:   make(map[string]int),
	}
	return NewFactory(imp, zap.NewNop(), opts...), imp
}

// parseOne parses a single file named test.block.css.
func parseOne(t *testing.T, css string) (*block.Block, error) {
	t.Helper()
	f, _ := newTestFactory(t, map[string]string{"test.block.css": css})
	return f.GetBlock(context.Background(), "test.block.css")
}

func messages(b *block.Block) []string {
	var out []string
	for _, err := range b.Errors() {
		out = append(out, err.Message)
	}
	return out
}
