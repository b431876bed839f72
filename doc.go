// Package cssblocks checks CSS Blocks stylesheets.
//
// A Block file (*.block.css) is an ordinary stylesheet whose selectors are
// restricted to a small object model: the root `:scope`, classes, and
// `[state|name]` / `[state|name=value]` states on either. Blocks reference
// each other with @block, re-export with @export, inherit with `extends`,
// declare interfaces with `implements` and borrow styles with `composes`.
// Definition files (*.block.d.css) describe precompiled Blocks and pin the
// output class of every style.
//
// # Checking
//
// Discover, resolve and validate every Block under a directory:
//
//	config := cssblocks.Config{
//		Root:     "web/styles",
//		Includes: []string{"**/*.block.css"},
//	}
//	result, err := cssblocks.Check(ctx, config, logger)
//
// Every diagnostic becomes an Issue in golangci-lint format, ordered by
// file, line and column. WriteOutput renders a result as issues, summary,
// full or json output.
//
// # CLI Tool
//
//	go install github.com/yacobolo/cssblocks/cmd/cssblocks@latest
package cssblocks
