package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/mesh-intelligence/apiconf/pkg/types"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <table>",
		Short: "List the records of a table",
		Long: `List prints every record stored in a table, one JSON document per line.
With --json the records are printed as an indented JSON array.

Valid table names: ` + validTableNames,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := lookupKind(args[0]); err != nil {
				return classify(err)
			}
			return a.withStore(func(store types.Store) error {
				tbl, err := store.GetTable(args[0])
				if err != nil {
					return err
				}
				docs, err := tbl.Fetch()
				if err != nil {
					return fmt.Errorf("fetch %s: %w", args[0], err)
				}

				out := cmd.OutOrStdout()
				if a.jsonMode {
					if docs == nil {
						docs = []json.RawMessage{}
					}
					return printJSON(out, docs)
				}
				for _, doc := range docs {
					fmt.Fprintln(out, string(doc))
				}
				return nil
			})
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	var field string
	cmd := &cobra.Command{
		Use:   "show <table> <id>",
		Short: "Display one record",
		Long: `Show prints one record as indented JSON. --field selects part of the
record with a gjson path such as "env.LOG_LEVEL" or "roles.0".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := lookupKind(args[0]); err != nil {
				return classify(err)
			}
			return a.withStore(func(store types.Store) error {
				tbl, err := store.GetTable(args[0])
				if err != nil {
					return err
				}
				doc, err := tbl.Get(args[1])
				if err != nil {
					return fmt.Errorf("%s %q: %w", args[0], args[1], err)
				}

				out := cmd.OutOrStdout()
				if field == "" {
					return printJSON(out, doc)
				}
				res := gjson.GetBytes(doc, field)
				if !res.Exists() {
					return fmt.Errorf("%s %q: field %q: %w", args[0], args[1], field, types.ErrNotFound)
				}
				if res.IsObject() || res.IsArray() {
					return printJSON(out, json.RawMessage(res.Raw))
				}
				fmt.Fprintln(out, res.String())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "gjson path of the field to print")
	return cmd
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("indent JSON: %w", err)
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return err
}
