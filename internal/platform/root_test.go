package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRoot(t *testing.T) {
	// base/
	//   site/ (deep.yaml)
	//     entries/blog/
	//   vault/ (fields.yaml)
	//   empty/
	base := t.TempDir()
	site := filepath.Join(base, "site")
	nested := filepath.Join(site, "entries", "blog")
	vault := filepath.Join(base, "vault")
	empty := filepath.Join(base, "empty")

	for _, dir := range []string{nested, vault, empty} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(site, "deep.yaml"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(vault, "fields.yaml"), nil, 0o644))

	tests := []struct {
		name    string
		start   string
		want    string
		wantErr bool
	}{
		{"config at start", site, site, false},
		{"config above", nested, site, false},
		{"field declarations", vault, vault, false},
		{"no root", empty, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.start)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tt.want), filepath.Clean(got))
		})
	}
}
