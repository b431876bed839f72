package blockparser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/yacobolo/cssblocks/internal/block"
)

// ErrCircularDependency is matched by errors.Is for every reference cycle.
var ErrCircularDependency = errors.New("circular dependency")

// CycleError reports a reference cycle. Path starts and ends with the same
// identifier.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "Circular dependency: " + strings.Join(e.Path, " -> ")
}

func (e *CycleError) Unwrap() error {
	return ErrCircularDependency
}

// Options configures a Factory.
type Options struct {
	// Concurrency limits how many references of one file resolve at once.
	// Zero means unlimited.
	Concurrency int
	// Expected id and name of definition files, keyed by identifier. Merged
	// with whatever the Importer reports.
	Expectations map[string]Expectation
	// Stdout and Stderr receive @block-debug output.
	Stdout io.Writer
	Stderr io.Writer
}

// Option configures a Factory.
type Option func(*Options)

// WithConcurrency limits parallel reference resolution per file.
func WithConcurrency(n int) Option {
	return func(o *Options) { o.Concurrency = n }
}

// WithExpectations sets definition file expectations.
func WithExpectations(exp map[string]Expectation) Option {
	return func(o *Options) { o.Expectations = exp }
}

// WithDebugOutput redirects @block-debug output.
func WithDebugOutput(stdout, stderr io.Writer) Option {
	return func(o *Options) { o.Stdout, o.Stderr = stdout, stderr }
}

type entry struct {
	done  chan struct{}
	block *block.Block
	err   error
}

// Factory resolves Block files. Each identifier is parsed at most once;
// concurrent requests for the same identifier share one parse.
type Factory struct {
	importer Importer
	opts     Options
	log      *zap.Logger

	mu      sync.Mutex
	entries map[string]*entry
	// waits holds an edge requester -> identifier while requester's parse
	// waits on identifier. A request that would close a loop is a cycle.
	waits map[string]map[string]int
	guids map[string]string

	debugMu sync.Mutex
	parses  atomic.Int64
}

// NewFactory creates a Factory reading files through importer.
func NewFactory(importer Importer, log *zap.Logger, opts ...Option) *Factory {
	if log == nil {
		log = zap.NewNop()
	}
	o := Options{Stdout: os.Stdout, Stderr: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}
	return &Factory{
		importer: importer,
		opts:     o,
		log:      log.Named("factory"),
		entries:  make(map[string]*entry),
		waits:    make(map[string]map[string]int),
		guids:    make(map[string]string),
	}
}

// Importer returns the importer the factory reads through.
func (f *Factory) Importer() Importer {
	return f.importer
}

// Parses returns how many files the factory has parsed.
func (f *Factory) Parses() int {
	return int(f.parses.Load())
}

// GetBlock resolves the Block with the given identifier. A thrown error is
// returned together with the partially constructed Block.
func (f *Factory) GetBlock(ctx context.Context, identifier string) (*block.Block, error) {
	return f.request(ctx, "", identifier)
}

// GetBlockFromPath resolves a Block by path.
func (f *Factory) GetBlockFromPath(ctx context.Context, path string) (*block.Block, error) {
	id, err := f.importer.Identifier("", path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	return f.GetBlock(ctx, id)
}

// getBlockRelative resolves path as referenced from the Block being
// constructed for from.
func (f *Factory) getBlockRelative(ctx context.Context, from, path string) (*block.Block, error) {
	id, err := f.importer.Identifier(from, path)
	if err != nil {
		return nil, err
	}
	return f.request(ctx, from, id)
}

func (f *Factory) request(ctx context.Context, requester, identifier string) (*block.Block, error) {
	f.mu.Lock()
	if requester != "" {
		if cycle := f.cycle(requester, identifier); cycle != nil {
			f.mu.Unlock()
			f.log.Debug("Circular dependency", zap.Strings("path", cycle.Path))
			return nil, cycle
		}
		f.addWait(requester, identifier)
		defer f.removeWait(requester, identifier)
	}

	if e, ok := f.entries[identifier]; ok {
		f.mu.Unlock()
		select {
		case <-e.done:
			return e.block, e.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	e := &entry{done: make(chan struct{})}
	f.entries[identifier] = e
	f.mu.Unlock()

	e.block, e.err = f.parse(ctx, identifier)
	close(e.done)
	return e.block, e.err
}

// cycle returns the loop requester -> identifier would close, or nil.
// Callers hold f.mu.
func (f *Factory) cycle(requester, identifier string) *CycleError {
	if requester == identifier {
		return &CycleError{Path: []string{requester, identifier}}
	}
	path := f.findPath(identifier, requester, map[string]bool{})
	if path == nil {
		return nil
	}
	return &CycleError{Path: append([]string{requester}, path...)}
}

// findPath does a depth first search for a chain of waits from -> to.
func (f *Factory) findPath(from, to string, seen map[string]bool) []string {
	if from == to {
		return []string{to}
	}
	if seen[from] {
		return nil
	}
	seen[from] = true
	for next := range f.waits[from] {
		if rest := f.findPath(next, to, seen); rest != nil {
			return append([]string{from}, rest...)
		}
	}
	return nil
}

func (f *Factory) addWait(requester, identifier string) {
	set, ok := f.waits[requester]
	if !ok {
		set = make(map[string]int)
		f.waits[requester] = set
	}
	set[identifier]++
}

func (f *Factory) removeWait(requester, identifier string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if set, ok := f.waits[requester]; ok {
		if set[identifier]--; set[identifier] <= 0 {
			delete(set, identifier)
		}
		if len(set) == 0 {
			delete(f.waits, requester)
		}
	}
}

// registerGUID claims guid for identifier and returns the identifier that
// claimed it first.
func (f *Factory) registerGUID(guid, identifier string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if owner, ok := f.guids[guid]; ok {
		return owner
	}
	f.guids[guid] = identifier
	return identifier
}

func (f *Factory) expectation(file *ImportedFile) *Expectation {
	if exp, ok := f.opts.Expectations[file.Identifier]; ok {
		return &exp
	}
	return file.Expected
}

func (f *Factory) parse(ctx context.Context, identifier string) (*block.Block, error) {
	file, err := f.importer.Import(ctx, identifier)
	if err != nil {
		return nil, err
	}
	f.parses.Add(1)
	f.log.Debug("Parsing block",
		zap.String("file", f.importer.DebugIdentifier(identifier)),
		zap.Int("bytes", len(file.Contents)))

	p := newFileParser(f, file)
	b, err := p.run(ctx)
	if err != nil {
		f.log.Debug("Block failed", zap.String("file", identifier), zap.Error(err))
	}
	return b, err
}
