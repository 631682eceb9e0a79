package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dwoolworth/bizdesk"
	"github.com/dwoolworth/bizdesk/internal/celfilter"
)

// records resolves a collection name, checks the gate for its module and
// returns its type-erased view. Writes through the view are validated.
func (o *rootOptions) records(ctx context.Context, name string) (bizdesk.Records, error) {
	schema, ok := bizdesk.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown collection %q (known: %s)", name, strings.Join(bizdesk.Collections(), ", "))
	}
	o.module = schema.Module
	if err := o.app.gate.Require(schema.Module); err != nil {
		return nil, err
	}
	rs, err := bizdesk.Lookup(ctx, o.app.db, name)
	if err != nil {
		return nil, err
	}
	return rs.Validated(), nil
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		search string
		fields []string
		where  string
	)
	cmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "List the records of a collection",
		Long: `List records in insertion order.

--search keeps records where any of --fields contains the term, ignoring case
(default: every text field). --where filters with a CEL expression over the
record's JSON fields, e.g. --where 'status == "open" && priority == "high"'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rs, err := opts.records(ctx, args[0])
			if err != nil {
				return err
			}

			var recs []any
			if search != "" {
				if len(fields) == 0 {
					fields = textFields(rs.Schema())
				}
				recs, err = rs.Search(ctx, search, fields...)
			} else {
				recs, err = rs.List(ctx)
			}
			if err != nil {
				return err
			}

			if where != "" {
				f, err := celfilter.Compile(where, fieldNames(rs.Schema()))
				if err != nil {
					return err
				}
				if recs, err = celfilter.Apply(f, recs); err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), recs)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive substring to look for")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "fields searched by --search")
	cmd.Flags().StringVarP(&where, "where", "w", "", "CEL filter expression")
	return cmd
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	var populate []string
	cmd := &cobra.Command{
		Use:   "get <collection> <id>",
		Short: "Print one record",
		Long:  "Print one record. --populate replaces the listed reference fields with the records they point at.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rs, err := opts.records(ctx, args[0])
			if err != nil {
				return err
			}
			rec, err := rs.Get(ctx, args[1])
			if err != nil {
				return err
			}
			if len(populate) == 0 {
				return printJSON(cmd.OutOrStdout(), rec)
			}
			out, err := populateRefs(ctx, opts, rs.Schema(), rec, populate)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringSliceVar(&populate, "populate", nil, "reference fields to expand")
	return cmd
}

// populateRefs expands single-id reference fields of rec. The referenced
// collection is gated like any other read.
func populateRefs(ctx context.Context, opts *rootOptions, schema *bizdesk.Schema, rec any, fields []string) (map[string]any, error) {
	out, err := celfilter.ToMap(rec)
	if err != nil {
		return nil, err
	}
	for _, name := range fields {
		fs := schema.GetField(name)
		if fs == nil || fs.Ref == "" {
			return nil, fmt.Errorf("%s has no reference field %q", schema.Collection, name)
		}
		id, _ := out[name].(string)
		if id == "" {
			continue
		}
		target, err := opts.records(ctx, fs.Ref)
		if err != nil {
			return nil, err
		}
		ref, err := target.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("populate %s: %w", name, err)
		}
		out[name] = ref
	}
	return out, nil
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "add <collection>",
		Short: "Add a record from JSON",
		Long:  "Add one record read as a JSON object from --file or stdin. The new id is printed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rs, err := opts.records(ctx, args[0])
			if err != nil {
				return err
			}
			raw, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			id, err := rs.Insert(ctx, raw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file (default stdin)")
	return cmd
}

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	var (
		file string
		sets []string
	)
	cmd := &cobra.Command{
		Use:   "update <collection> <id>",
		Short: "Merge fields into a record",
		Long: `Merge a JSON object of field values into a record. The patch is read from
--file or stdin unless --set key=value pairs are given; --set values are parsed
as JSON when possible and taken as strings otherwise.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rs, err := opts.records(ctx, args[0])
			if err != nil {
				return err
			}

			var patch bizdesk.Patch
			if len(sets) > 0 {
				if patch, err = parseSets(sets); err != nil {
					return err
				}
			} else {
				raw, err := readInput(cmd, file)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(raw, &patch); err != nil {
					return fmt.Errorf("decode patch: %w", err)
				}
			}

			if err := rs.Update(ctx, args[1], patch); err != nil {
				return err
			}
			rec, err := rs.Get(ctx, args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON patch file (default stdin)")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value to set (repeatable)")
	return cmd
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <collection> <id>",
		Short: "Remove a record (a missing id is not an error)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rs, err := opts.records(ctx, args[0])
			if err != nil {
				return err
			}
			return rs.Remove(ctx, args[1])
		},
	}
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <collection> <file>",
		Short: "Add every record of a JSON array file in one write",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rs, err := opts.records(ctx, args[0])
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			var items []json.RawMessage
			if err := json.Unmarshal(raw, &items); err != nil {
				return fmt.Errorf("decode %s: %w", args[1], err)
			}
			for i, item := range items {
				if _, err := rs.Decode(item); err != nil {
					return fmt.Errorf("item %d: %w", i, err)
				}
			}
			ids, err := rs.InsertMany(ctx, raw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records\n", len(ids))
			return nil
		},
	}
}

func parseSets(sets []string) (bizdesk.Patch, error) {
	patch := bizdesk.Patch{}
	for _, s := range sets {
		key, val, ok := strings.Cut(s, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("--set %q: want field=value", s)
		}
		var v any
		if err := json.Unmarshal([]byte(val), &v); err != nil {
			v = val
		}
		patch[key] = v
	}
	return patch, nil
}

func readInput(cmd *cobra.Command, file string) ([]byte, error) {
	if file != "" {
		return os.ReadFile(file)
	}
	return io.ReadAll(cmd.InOrStdin())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// textFields lists the plain string fields of a schema, the default search set.
func textFields(schema *bizdesk.Schema) []string {
	var out []string
	for _, f := range schema.Fields {
		if f.Type == "string" && f.JSONName != "id" {
			out = append(out, f.JSONName)
		}
	}
	return out
}

func fieldNames(schema *bizdesk.Schema) []string {
	out := make([]string, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		out = append(out, f.JSONName)
	}
	return out
}
