package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelativize(t *testing.T) {
	root := filepath.FromSlash("/data/tree")
	tests := []struct {
		name    string
		path    string
		want    string
		outside bool
	}{
		{name: "direct child", path: "/data/tree/a.txt", want: "a.txt"},
		{name: "nested", path: "/data/tree/d1/d2/f3.dat", want: "d1/d2/f3.dat"},
		{name: "sibling dir", path: "/data/other/x.bin", want: "../other/x.bin", outside: true},
		{name: "parent", path: "/data", want: "..", outside: true},
		{name: "unclean input", path: "/data/tree/d1/../d1/f1.dat", want: "d1/f1.dat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rel, outside := Relativize(filepath.FromSlash(tt.path), root)
			assert.Equal(t, tt.want, rel)
			assert.Equal(t, tt.outside, outside)
		})
	}
}

func TestRelativize_DotDotPrefixedName(t *testing.T) {
	root := filepath.FromSlash("/data/tree")
	rel, outside := Relativize(filepath.FromSlash("/data/tree/..hidden"), root)
	assert.Equal(t, "..hidden", rel)
	assert.False(t, outside)
}

func TestJoin(t *testing.T) {
	got := Join(filepath.FromSlash("/data/tree"), "d1/d2/f3.dat")
	assert.Equal(t, filepath.FromSlash("/data/tree/d1/d2/f3.dat"), got)
}
