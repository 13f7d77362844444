package main

import (
	"bytes"
	"context"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/imgsim/blobstore"
	"github.com/hupe1980/imgsim/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeImages(t *testing.T, dir string) []string {
	t.Helper()
	imgs := map[string][]byte{
		"gradient.png": testutil.EncodePNG(t, testutil.Gradient(64, 64)),
		"checker.png":  testutil.EncodePNG(t, testutil.Checkerboard(64, 64, 8, color.NRGBA{R: 255, A: 255}, color.NRGBA{B: 255, A: 255})),
		"green.png":    testutil.EncodePNG(t, testutil.Solid(64, 64, color.NRGBA{G: 200, A: 255})),
	}
	var paths []string
	for _, name := range []string{"gradient.png", "checker.png", "green.png"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, imgs[name], 0o600))
		paths = append(paths, p)
	}
	return paths
}

func TestCLI_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	tables := filepath.Join(dir, "tables")
	db := filepath.Join(dir, "photos.db")
	common := []string{"--db", db, "--tables", tables, "--log-level", "error"}

	out, err := run(t, append([]string{"hashgen", "--set", "v7", "--compression", "lz4"}, common...)...)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "v7\tBIT_SAMPLING\t"))
	assert.True(t, strings.HasPrefix(lines[1], "v7\tLSH\t"))

	mappingPath := filepath.Join(dir, "mapping.json")
	require.NoError(t, os.WriteFile(mappingPath, []byte(`{"properties": {"photo": {"type": "image",
		"feature": {"color_layout": {"hash": ["LSH"]}, "edge_histogram": {}}}}}`), 0o600))

	images := writeImages(t, dir)
	args := append([]string{"index", "--field", "photo", "--mapping", mappingPath}, common...)
	out, err = run(t, append(args, images[:2]...)...)
	require.NoError(t, err)
	assert.Equal(t, "0\t"+images[0]+"\n1\t"+images[1]+"\n", out)

	// The mapping persisted by the first run is reused.
	out, err = run(t, append(append([]string{"index", "--field", "photo"}, common...), images[2])...)
	require.NoError(t, err)
	assert.Equal(t, "2\t"+images[2]+"\n", out)

	out, err = run(t, append([]string{"search", "--field", "photo", "--hash", "LSH", "-k", "1", images[1]}, common...)...)
	require.NoError(t, err)
	assert.Equal(t, "1\t1\t2\n", out)

	out, err = run(t, append([]string{"search", "--field", "photo", "--feature", "edge_histogram", "--boost", "2", "--explain", "-k", "1", images[1]}, common...)...)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "1\t1\t4\n"), out)
	assert.Contains(t, out, "boost")

	_, err = run(t, append([]string{"delete", "2"}, common...)...)
	require.NoError(t, err)
	out, err = run(t, append([]string{"search", "--field", "photo", "-k", "3", images[2]}, common...)...)
	require.NoError(t, err)
	assert.NotContains(t, out, "\t2\t")
}

func TestCLI_Errors(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "x.db")

	_, err := run(t, "hashgen", "--db", db)
	require.ErrorContains(t, err, "--tables is required")

	_, err = run(t, "search", "--db", db, "--feature", "NOPE", "q.png")
	require.Error(t, err)

	_, err = run(t, "index", "--db", db, "--log-format", "xml", "a.png")
	require.ErrorContains(t, err, "log-format")

	_, err = run(t, "delete", "--db", db, "abc")
	require.ErrorContains(t, err, "invalid document number")
}

func TestTableStore(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{"Unset", "", ""},
		{"Path", dir, ""},
		{"FileURL", "file://" + dir, ""},
		{"MinioMissingBucket", "minio://localhost:9000", "missing bucket"},
		{"UnknownScheme", "ftp://host/tables", "unsupported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &app{v: viper.New()}
			a.v.Set("tables", tt.url)
			store, err := a.tableStore(context.Background())
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.url == "" {
				assert.Nil(t, store)
				return
			}
			assert.IsType(t, &blobstore.LocalStore{}, store)
		})
	}
}
