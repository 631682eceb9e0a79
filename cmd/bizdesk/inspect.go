package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dwoolworth/bizdesk"
)

func newInspectCmd() *cobra.Command {
	var module string
	cmd := &cobra.Command{
		Use:         "inspect [collection...]",
		Short:       "Inspect registered record schemas",
		Long:        "Display registered collections with their owning module, fields, references and hooks.",
		Annotations: map[string]string{standalone: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = bizdesk.Collections()
			}
			sort.Strings(names)

			out := cmd.OutOrStdout()
			shown := 0
			for _, name := range names {
				schema, ok := bizdesk.Get(name)
				if !ok {
					return fmt.Errorf("unknown collection %q", name)
				}
				if module != "" && schema.Module != module {
					continue
				}
				printSchema(out, schema)
				fmt.Fprintln(out)
				shown++
			}
			if shown == 0 {
				fmt.Fprintln(out, "No collections registered.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&module, "module", "", "only show collections owned by this module")
	return cmd
}

func printSchema(w io.Writer, schema *bizdesk.Schema) {
	fmt.Fprintf(w, "%s (collection: %s, module: %s)\n", schema.ModelName, schema.Collection, schema.Module)

	for i, field := range schema.Fields {
		connector := "├──"
		if i == len(schema.Fields)-1 {
			connector = "└──"
		}
		refStr := ""
		if field.Ref != "" {
			refStr = fmt.Sprintf(" → %s.id", field.Ref)
		}
		fmt.Fprintf(w, "  %s %-16s %-22s %s%s\n", connector, field.JSONName, field.Type, formatFieldAttrs(field), refStr)
	}

	if len(schema.Hooks) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  Hooks:")
		for _, h := range schema.Hooks {
			fmt.Fprintf(w, "    ⚡ %s\n", h)
		}
	}
}

func formatFieldAttrs(f bizdesk.FieldSchema) string {
	var parts []string
	if f.Required {
		parts = append(parts, "required")
	}
	if f.AppendOnly {
		parts = append(parts, "append-only")
	}
	if f.Stamp != "" {
		parts = append(parts, fmt.Sprintf("stamps: %s", f.Stamp))
	}
	if len(f.Enum) > 0 {
		parts = append(parts, fmt.Sprintf("enum(%s)", strings.Join(f.Enum, "|")))
	}
	if f.Default != "" {
		parts = append(parts, fmt.Sprintf("default: %s", f.Default))
	}
	if f.Min != nil {
		parts = append(parts, fmt.Sprintf("min: %d", *f.Min))
	}
	if f.Max != nil {
		parts = append(parts, fmt.Sprintf("max: %d", *f.Max))
	}
	return strings.Join(parts, ", ")
}
