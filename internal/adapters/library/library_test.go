package library

import (
	"testing"

	"github.com/felixgeelhaar/vamphost/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	t.Parallel()

	k, err := ParseKind(" WASM ")
	require.NoError(t, err)
	assert.Equal(t, ports.LibraryWASM, k)

	_, err = ParseKind("ladspa")
	assert.Error(t, err)
}

func TestOpeners(t *testing.T) {
	t.Parallel()

	all := Openers()
	require.Len(t, all, 3)
	assert.Equal(t, ports.LibraryNative, all[0].Kind())
	assert.Equal(t, ".wasm", all[1].Suffix())
	assert.Equal(t, ".lua", all[2].Suffix())

	some := Openers(ports.LibraryLua, ports.LibraryLua, ports.LibraryWASM)
	require.Len(t, some, 2)
	assert.Equal(t, ports.LibraryLua, some[0].Kind())
	assert.Equal(t, ports.LibraryWASM, some[1].Kind())
}
