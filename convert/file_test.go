package convert

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azhovan/domtoml"
)

func TestInferFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"config.toml", TOML},
		{"config.TOML", TOML},
		{"config.json", JSON},
		{"config.yaml", YAML},
		{"config.yml", YAML},
		{"config.ini", ""},
		{"config", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, InferFormat(tt.path))
		})
	}
}

func TestParseFormat(t *testing.T) {
	for name, want := range map[string]Format{"toml": TOML, "JSON": JSON, "yaml": YAML, "yml": YAML} {
		got, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestReadFile_AllFormats(t *testing.T) {
	tmpDir := t.TempDir()
	files := map[string]string{
		"config.toml": "[database]\nhost = \"localhost\"\nport = 5432\n",
		"config.json": `{"database": {"host": "localhost", "port": 5432}}`,
		"config.yaml": "database:\n  host: localhost\n  port: 5432\n",
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(tmpDir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			doc, err := ReadFile(path, "")
			require.NoError(t, err)

			host, err := domtoml.Get[string](doc, "database.host")
			require.NoError(t, err)
			assert.Equal(t, "localhost", host)

			port, err := domtoml.Get[int](doc, "database.port")
			require.NoError(t, err)
			assert.Equal(t, 5432, port)
		})
	}
}

func TestReadFile_ExplicitFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.conf")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": 1}`), 0o644))

	doc, err := ReadFile(path, JSON)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, doc.Keys())

	_, err = ReadFile(path, "")
	assert.Error(t, err)
}

func TestReadFile_NotFound(t *testing.T) {
	for _, name := range []string{"missing.toml", "missing.json", "missing.yaml"} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadFile(filepath.Join(t.TempDir(), name), "")
			assert.True(t, errors.Is(err, domtoml.ErrNotFound))
		})
	}
}

func TestReadFile_ParseErrorNamesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": `), 0o644))

	_, err := ReadFile(path, "")
	var pe *domtoml.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, path, pe.Source)
	assert.Contains(t, err.Error(), path)
}

func TestWriteFile(t *testing.T) {
	doc, err := domtoml.Loads("name = \"spam\"\n\n[build]\nbackend = \"setuptools\"\n")
	require.NoError(t, err)

	tmpDir := t.TempDir()
	for _, name := range []string{"out.toml", "out.json", "out.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(tmpDir, name)
			require.NoError(t, WriteFile(path, doc, ""))

			back, err := ReadFile(path, "")
			require.NoError(t, err)
			assert.True(t, back.Equal(doc))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, domtoml.DefaultFileMode, info.Mode().Perm())
		})
	}
}

func TestWriteFile_Errors(t *testing.T) {
	doc := domtoml.NewDocument()
	doc.Set("a", 1)

	err := WriteFile(filepath.Join(t.TempDir(), "missing", "out.json"), doc, "")
	assert.True(t, errors.Is(err, domtoml.ErrWrite))

	err = WriteFile(filepath.Join(t.TempDir(), "out.xml"), doc, "")
	assert.Error(t, err)
}

func TestConvert_TOMLToJSON(t *testing.T) {
	doc, err := Read(strings.NewReader("b = 1\na = [\"x\"]\n"), TOML)
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, Write(&out, doc, JSON))
	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": [\n    \"x\"\n  ]\n}\n", out.String())
}

func TestRead_UnsupportedFormat(t *testing.T) {
	_, err := Read(strings.NewReader(""), Format("ini"))
	assert.Error(t, err)

	err = Write(&strings.Builder{}, domtoml.NewDocument(), Format("ini"))
	assert.Error(t, err)
}
