package confparse

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/Azhovan/domtoml"
)

const minimalConfig = "[project]\nname = \"spam\"\nversion = \"2020.0.0\"\n"

// stringList checks that every element of the array at key is a string and
// returns them sorted and deduplicated.
func stringList(key string) ParseFunc {
	return func(t *domtoml.Document) (any, error) {
		v, _ := t.Get(key)
		arr, err := AssertType[[]any](v, "project", key)
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(arr))
		for i, elem := range arr {
			s, err := AssertIndexedType[string](elem, i, "project", key)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		slices.Sort(out)
		return slices.Compact(out), nil
	}
}

// stringTable checks that the table at key maps names to strings.
func stringTable(key string) ParseFunc {
	return func(t *domtoml.Document) (any, error) {
		v, _ := t.Get(key)
		table, err := AssertType[*domtoml.Document](v, "project", key)
		if err != nil {
			return nil, err
		}
		for name, val := range table.All() {
			if _, err := AssertValueType[string](val, "project", key, name); err != nil {
				return nil, err
			}
		}
		return table, nil
	}
}

func newProjectParser() *TableParser {
	return NewTableParser("project").
		Handle("name", nil).
		Handle("description", func(t *domtoml.Document) (any, error) {
			v, _ := t.Get("description")
			return AssertType[string](v, "project", "description")
		}).
		Handle("keywords", stringList("keywords")).
		Handle("classifiers", stringList("classifiers")).
		Handle("urls", stringTable("urls")).
		Handle("scripts", stringTable("scripts")).
		Handle("dependencies", stringList("dependencies")).
		Default("description", "").
		Factory("dependencies", func() any { return []string{} })
}

func loadProject(t *testing.T, config string) *domtoml.Document {
	t.Helper()
	doc, err := domtoml.Loads(config)
	require.NoError(t, err)
	project, err := domtoml.Get[*domtoml.Document](doc, "project")
	require.NoError(t, err)
	return project
}

func TestTableParser_Valid(t *testing.T) {
	tests := []struct {
		name   string
		config string
		key    string
		want   any
	}{
		{
			name:   "minimal",
			config: minimalConfig,
			key:    "name",
			want:   "spam",
		},
		{
			name:   "description",
			config: minimalConfig + "description = \"Lovely Spam! Wonderful Spam!\"\n",
			key:    "description",
			want:   "Lovely Spam! Wonderful Spam!",
		},
		{
			name:   "keywords are sorted and deduplicated",
			config: minimalConfig + "keywords = [\"egg\", \"bacon\", \"sausage\", \"egg\"]\n",
			key:    "keywords",
			want:   []string{"bacon", "egg", "sausage"},
		},
		{
			name: "dependencies",
			config: minimalConfig + `dependencies = [
  "httpx",
  "gidgethub[httpx]>4.0.0",
  "django>2.1; os_name != 'nt'",
]
`,
			key:  "dependencies",
			want: []string{"django>2.1; os_name != 'nt'", "gidgethub[httpx]>4.0.0", "httpx"},
		},
		{
			name:   "unicode",
			config: minimalConfig + "description = \"Factory ⸻ A code generator 🏭\"\nauthors = [{name = \"Łukasz Langa\"}]\n",
			key:    "description",
			want:   "Factory ⸻ A code generator 🏭",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := newProjectParser().Parse(loadProject(t, tt.config), false)
			require.NoError(t, err)

			got, ok := parsed.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)

			// Keys without a handler are not copied
			assert.False(t, parsed.Has("version"))
			assert.False(t, parsed.Has("authors"))
		})
	}
}

func TestTableParser_URLs(t *testing.T) {
	config := minimalConfig + `
[project.urls]
homepage = "example.com"
documentation = "readthedocs.org"
repository = "github.com"
`
	parsed, err := newProjectParser().Parse(loadProject(t, config), false)
	require.NoError(t, err)

	urls, err := domtoml.Get[map[string]string](parsed, "urls")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"homepage":      "example.com",
		"documentation": "readthedocs.org",
		"repository":    "github.com",
	}, urls)

	// Keys come out in handler order
	assert.Equal(t, []string{"name", "urls"}, parsed.Keys())
}

func TestTableParser_Errors(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		message string
	}{
		{
			name:    "keywords wrong type",
			config:  minimalConfig + "keywords = [1, 2, 3, 4, 5]\n",
			message: "invalid type for 'project.keywords[0]': expected string, got integer",
		},
		{
			name:    "description is an array",
			config:  minimalConfig + "description = [1, 2, 3, 4, 5]\n",
			message: "invalid type for 'project.description': expected string, got array",
		},
		{
			name:    "description is an integer",
			config:  minimalConfig + "description = 12345\n",
			message: "invalid type for 'project.description': expected string, got integer",
		},
		{
			name:    "classifiers wrong type",
			config:  minimalConfig + "classifiers = [1, 2, 3, 4, 5]\n",
			message: "invalid type for 'project.classifiers[0]': expected string, got integer",
		},
		{
			name:    "dependencies wrong type",
			config:  minimalConfig + "dependencies = [1, 2, 3, 4, 5]\n",
			message: "invalid type for 'project.dependencies[0]': expected string, got integer",
		},
		{
			name:    "urls wrong type",
			config:  minimalConfig + "urls = {foo = 1234}\n",
			message: "invalid value type for 'project.urls.foo': expected string, got integer",
		},
		{
			name:    "urls is not a table",
			config:  minimalConfig + "urls = \"example.com\"\n",
			message: "invalid type for 'project.urls': expected table, got string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := newProjectParser().Parse(loadProject(t, tt.config), false)
			require.Error(t, err)
			assert.Nil(t, parsed)
			assert.EqualError(t, err, tt.message)
			assert.True(t, errors.Is(err, domtoml.ErrTypeMismatch))
		})
	}
}

func TestTableParser_CollectsAllErrors(t *testing.T) {
	config := minimalConfig + "description = 1\nkeywords = [true]\nurls = { a = 2 }\n"

	_, err := newProjectParser().Parse(loadProject(t, config), false)
	require.Error(t, err)

	errs := multierr.Errors(err)
	require.Len(t, errs, 3)
	assert.EqualError(t, errs[0], "invalid type for 'project.description': expected string, got integer")
	assert.EqualError(t, errs[1], "invalid type for 'project.keywords[0]': expected string, got boolean")
	assert.EqualError(t, errs[2], "invalid value type for 'project.urls.a': expected string, got integer")
}

func TestTableParser_Defaults(t *testing.T) {
	p := newProjectParser()

	parsed, err := p.Parse(loadProject(t, minimalConfig), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "description", "dependencies"}, parsed.Keys())

	desc, _ := parsed.Get("description")
	assert.Equal(t, "", desc)

	deps, _ := parsed.Get("dependencies")
	assert.Equal(t, []string{}, deps)

	// Present keys win over defaults
	parsed, err = p.Parse(loadProject(t, minimalConfig+"description = \"d\"\n"), true)
	require.NoError(t, err)
	desc, _ = parsed.Get("description")
	assert.Equal(t, "d", desc)
}

func TestTableParser_Configuration(t *testing.T) {
	p := NewTableParser("tool.demo").
		Handle("a", nil).
		Handle("b", nil).
		Handle("a", func(*domtoml.Document) (any, error) { return "replaced", nil })

	assert.Equal(t, "tool.demo", p.Name())
	assert.Equal(t, []string{"a", "b"}, p.Keys())

	table := domtoml.NewDocument()
	table.Set("b", int64(2))
	table.Set("a", int64(1))

	parsed, err := p.Parse(table, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, parsed.Keys())

	a, _ := parsed.Get("a")
	assert.Equal(t, "replaced", a)
}
