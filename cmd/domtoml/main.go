// Command domtoml reads, reformats and converts TOML documents.
//
// Usage:
//
//	domtoml get <file> <path>            - Print the value at a key path
//	domtoml keys <file>                  - List every key path with its type
//	domtoml fmt [--check] <files...>     - Reformat files in place
//	domtoml convert <file> --to <format> - Convert between TOML, JSON and YAML
//	domtoml version                      - Show version information
//
// Examples:
//
//	domtoml get pyproject.toml project.name
//	domtoml get pyproject.toml 'tool."my tool".enabled'
//	domtoml fmt --check configs/*.toml
//	domtoml convert config.yaml --to toml --out config.toml
//
// Set DOMTOML_LOG_LEVEL=debug or pass --verbose to log file operations.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Azhovan/domtoml"
	"github.com/Azhovan/domtoml/convert"
	"github.com/Azhovan/domtoml/internal/buildinfo"
	"github.com/Azhovan/domtoml/internal/keypath"
	"github.com/Azhovan/domtoml/internal/log"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "domtoml",
		Short: "Read, reformat and convert TOML documents",
		Long: `domtoml loads TOML documents keeping key order, prints values by key path,
rewrites files in a canonical format and converts between TOML, JSON and YAML.`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			log.Init(verbose)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			log.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log file operations to stderr")

	// ---- version command ----
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "version: %s\n", buildinfo.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", buildinfo.Commit)
		},
	}

	// ---- get command ----
	getCmd := &cobra.Command{
		Use:   "get <file> <path>",
		Short: "Print the value at a key path",
		Long: `Print the value at a dotted key path. Tables are printed as TOML documents,
other values as TOML value expressions.

Key paths use TOML key syntax with array indexes:
  server.port
  tool."my tool".enabled
  project.authors[0].name`,
		Example: "domtoml get pyproject.toml project.version",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := convert.ReadFile(args[0], "", domtoml.WithLogger(log.Zap()))
			if err != nil {
				return err
			}
			v, err := domtoml.Lookup(doc, args[1])
			if err != nil {
				return err
			}

			var out string
			if table, ok := v.(*domtoml.Document); ok {
				out, err = domtoml.Dumps(table)
			} else {
				out, err = domtoml.FormatValue(v)
				out += "\n"
			}
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}

	// ---- keys command ----
	keysCmd := &cobra.Command{
		Use:     "keys <file>",
		Short:   "List every key path with its type and value",
		Example: "domtoml keys config.toml",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := convert.ReadFile(args[0], "", domtoml.WithLogger(log.Zap()))
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Key", "Type", "Value"})
			table.SetBorder(false)
			table.SetAutoWrapText(false)
			table.AppendBulk(keyRows(doc, ""))
			table.Render()
			return nil
		},
	}

	// ---- convert command ----
	var to, out string
	convertCmd := &cobra.Command{
		Use:   "convert <file> --to <toml|json|yaml>",
		Short: "Convert a document between TOML, JSON and YAML",
		Long: `Convert a document between TOML, JSON and YAML, keeping key order.
The input format is inferred from the file extension. Without --out the
result is written to stdout.`,
		Example: "domtoml convert config.json --to toml --out config.toml",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := convert.ParseFormat(to)
			if err != nil {
				return err
			}
			opts := []domtoml.Option{domtoml.WithLogger(log.Zap())}
			doc, err := convert.ReadFile(args[0], "", opts...)
			if err != nil {
				return err
			}
			if out == "" {
				return convert.Write(cmd.OutOrStdout(), doc, format, opts...)
			}
			if err := convert.WriteFile(out, doc, format, opts...); err != nil {
				return err
			}
			size := "unknown"
			if info, err := os.Stat(out); err == nil {
				size = humanize.Bytes(uint64(info.Size()))
			}
			log.Info("converted document", "from", args[0], "to", out, "format", format, "size", size)
			return nil
		},
	}
	convertCmd.Flags().StringVar(&to, "to", "toml", "output format: toml, json or yaml")
	convertCmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")

	root.AddCommand(getCmd, keysCmd, newFmtCmd(), convertCmd, versionCmd)
	return root
}

// keyRows flattens doc into one row per leaf value. Arrays of tables are
// descended into; other arrays are shown as a single value.
func keyRows(doc *domtoml.Document, prefix string) [][]string {
	var rows [][]string
	for k, v := range doc.All() {
		path := keypath.Child(prefix, k)
		rows = append(rows, valueRows(path, v)...)
	}
	return rows
}

func valueRows(path string, v any) [][]string {
	switch t := v.(type) {
	case *domtoml.Document:
		if t.Len() == 0 {
			return [][]string{{path, "table", "{}"}}
		}
		return keyRows(t, path)
	case []any:
		if len(t) > 0 && allTables(t) {
			var rows [][]string
			for i, elem := range t {
				rows = append(rows, valueRows(keypath.Index(path, i), elem)...)
			}
			return rows
		}
	}

	text, err := domtoml.FormatValue(v)
	if err != nil {
		text = err.Error()
	}
	return [][]string{{path, domtoml.TypeName(v), text}}
}

func allTables(arr []any) bool {
	for _, elem := range arr {
		if _, ok := elem.(*domtoml.Document); !ok {
			return false
		}
	}
	return true
}
