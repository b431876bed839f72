package diag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorString(t *testing.T) {
	// Called through a value so vet's printf check does not reject the
	// deliberately unformatted "%" message below.
	newErr := New
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "with location",
			err:  Syntax(&Location{Filename: "nav.block.css", Start: Position{Line: 3, Column: 5}}, "Illegal %s", "thing"),
			want: "[css-blocks] BlockSyntaxError: Illegal thing (nav.block.css:3:5)",
		},
		{
			name: "file only",
			err:  Definition(&Location{Filename: "nav.block.d.css"}, "stale"),
			want: "[css-blocks] DefinitionError: stale (nav.block.d.css)",
		},
		{
			name: "no location",
			err:  newErr(nil, "100% broken"),
			want: "[css-blocks] Error: 100% broken",
		},
		{
			name: "path",
			err:  Path(nil, "bad path"),
			want: "[css-blocks] BlockPathError: bad path",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestCascade(t *testing.T) {
	root := Syntax(&Location{Filename: "c.block.css", Start: Position{Line: 1, Column: 1}}, "root cause")
	mid := Cascade(&Location{Filename: "b.block.css", Start: Position{Line: 2, Column: 1}}, root)
	top := Cascade(&Location{Filename: "a.block.css", Start: Position{Line: 4, Column: 1}}, mid)

	assert.Equal(t, "[css-blocks] CascadingError: Error in imported block. (a.block.css:4:1)", top.Error())
	assert.Len(t, Chain(top), 3)
	assert.Same(t, root, RootCause(top))
	assert.True(t, IsKind(top, KindSyntax))
	assert.True(t, IsKind(top, KindCascading))
	assert.False(t, IsKind(top, KindDefinition))
	assert.ErrorIs(t, top, root)

	sentinel := errors.New("boom")
	wrapped := Cascade(nil, fmt.Errorf("read: %w", sentinel))
	assert.ErrorIs(t, wrapped, sentinel)
	assert.Equal(t, sentinel, RootCause(wrapped))
	assert.Nil(t, RootCause(nil))
}

func TestLocationOffset(t *testing.T) {
	loc := &Location{Filename: "a", Start: Position{Line: 2, Column: 4}, End: Position{Line: 2, Column: 6}}

	moved := loc.Offset(5)
	assert.Equal(t, 9, moved.Start.Column)
	assert.Equal(t, moved.Start, moved.End)
	assert.Equal(t, 4, loc.Start.Column)

	var nilLoc *Location
	assert.Nil(t, nilLoc.Offset(1))
	assert.Equal(t, "", nilLoc.String())
}

func TestList(t *testing.T) {
	var l List
	assert.NoError(t, l.Err())

	l.Add(nil)
	l.Add(Syntax(nil, "one"))
	l.Add(Definition(nil, "two"))
	require.Equal(t, 2, l.Len())

	err := l.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "one")
	assert.Contains(t, err.Error(), "two")

	flat := Flatten(err)
	require.Len(t, flat, 2)
	assert.Equal(t, KindSyntax, flat[0].Kind)
	assert.Equal(t, KindDefinition, flat[1].Kind)

	other := Flatten(errors.New("plain"))
	require.Len(t, other, 1)
	assert.Equal(t, KindError, other[0].Kind)
	assert.Equal(t, "plain", other[0].Message)

	// the copy is independent of the list
	errs := l.Errors()
	errs[0] = nil
	assert.NotNil(t, l.Errors()[0])
}
