package loader

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePluginKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    PluginKey
		wantErr bool
	}{
		{in: "vamp-example-plugins:percussiononsets", want: PluginKey{"vamp-example-plugins", "percussiononsets"}},
		{in: "lib:id:with:colons", want: PluginKey{"lib", "id:with:colons"}},
		{in: "nocolon", wantErr: true},
		{in: ":id", wantErr: true},
		{in: "lib:", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParsePluginKey(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestComposePluginKey(t *testing.T) {
	t.Parallel()

	key := ComposePluginKey(filepath.Join("usr", "lib", "vamp", "Example.Plugins.so"), "zc")
	assert.Equal(t, PluginKey{Library: "Example.Plugins", Identifier: "zc"}, key)
	assert.Equal(t, "Example.Plugins:zc", key.String())
}

func TestLocationCache(t *testing.T) {
	t.Parallel()

	c := NewLocationCache()
	assert.False(t, c.Populated())

	b := PluginKey{"b", "x"}
	a := PluginKey{"a", "y"}
	assert.True(t, c.Add(b, "/one/b.so"))
	assert.False(t, c.Add(b, "/two/b.so"))
	assert.True(t, c.Add(a, "/one/a.so"))

	path, ok := c.Lookup(b)
	require.True(t, ok)
	assert.Equal(t, "/one/b.so", path)

	_, ok = c.Lookup(PluginKey{"c", "z"})
	assert.False(t, ok)

	assert.Equal(t, []PluginKey{a, b}, c.Keys())

	c.MarkPopulated()
	assert.True(t, c.Populated())
}

func TestTaxonomy(t *testing.T) {
	t.Parallel()

	tax := NewTaxonomy()
	key := PluginKey{"lib", "x"}
	assert.Empty(t, tax.Category(key))

	tax.Set(key, []string{"Time", "Onsets"})
	tax.Set(key, []string{"Low Level"})
	assert.Equal(t, []string{"Low Level"}, tax.Category(key))

	got := tax.Category(key)
	got[0] = "mutated"
	assert.Equal(t, []string{"Low Level"}, tax.Category(key))
}

func TestParseCategories(t *testing.T) {
	t.Parallel()

	data := []byte("vamp:ex:onsets::Time > Onsets\r\n" +
		"\n" +
		"# comment\n" +
		"vamp:ex:nodelimiter Time\n" +
		"lv2:ex:other::Time\n" +
		"vamp:nokey::Time\n" +
		"vamp:ex:empty::\n" +
		"vamp:ex:zc::Low Level Features > Zero Crossings\n")

	got := ParseCategories(data)
	require.Len(t, got, 3)
	assert.Equal(t, PluginKey{"ex", "onsets"}, got[0].Key)
	assert.Equal(t, []string{"Time", "Onsets"}, got[0].Hierarchy)
	assert.Equal(t, PluginKey{"ex", "empty"}, got[1].Key)
	assert.Empty(t, got[1].Hierarchy)
	assert.Equal(t, []string{"Low Level Features", "Zero Crossings"}, got[2].Hierarchy)
}

func TestParseCategories_KeepsSegmentsAsSplit(t *testing.T) {
	t.Parallel()

	got := ParseCategories([]byte("vamp:ex:a::Time >Onsets > Sub \n"))
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Time >Onsets", "Sub "}, got[0].Hierarchy)
}

func TestParseCategories_LongLine(t *testing.T) {
	t.Parallel()

	long := "vamp:ex:long::" + strings.Repeat("x", 70*1024)
	data := []byte("vamp:ex:a::A\n" + long + "\nvamp:ex:b::B\n")

	got := ParseCategories(data)
	require.Len(t, got, 3)
	assert.Equal(t, PluginKey{"ex", "a"}, got[0].Key)
	assert.Len(t, got[1].Hierarchy[0], 70*1024)
	assert.Equal(t, PluginKey{"ex", "b"}, got[2].Key)
	assert.Equal(t, []string{"B"}, got[2].Hierarchy)
}

func TestCategoryDirs(t *testing.T) {
	t.Parallel()

	got := categoryDirs([]string{"/usr/local/lib/vamp", "/opt/vamp", "/usr/lib/vamp", "/usr/local/lib/vamp"})
	assert.Equal(t, []string{
		"/usr/local/lib/vamp",
		"/opt/vamp",
		"/usr/lib/vamp",
		filepath.FromSlash("/usr/local/share/vamp"),
		filepath.FromSlash("/usr/share/vamp"),
	}, got)
}

func TestBuildSearchPath(t *testing.T) {
	t.Parallel()

	env := "/extra" + string(filepath.ListSeparator) + "$HOME/mine" + string(filepath.ListSeparator) + "/usr/lib/vamp"
	got := BuildSearchPath(env, "/home/ana", []string{"$HOME/vamp", "~/.vamp", "/usr/lib/vamp"})
	assert.Equal(t, []string{
		"/extra",
		"/home/ana/mine",
		"/usr/lib/vamp",
		"/home/ana/vamp",
		filepath.Join("/home/ana", ".vamp"),
	}, got)

	assert.Equal(t, []string{"/a"}, BuildSearchPath("", "/h", []string{"", "/a", " "}))
}

func TestPlatformDefaults(t *testing.T) {
	t.Parallel()

	assert.NotEmpty(t, PlatformDefaults())
}
