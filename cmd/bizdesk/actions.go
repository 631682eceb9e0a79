package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dwoolworth/bizdesk/models"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var entry models.WarrantyHistory
	cmd := &cobra.Command{
		Use:   "history <claim-id>",
		Short: "Append an action to a warranty claim and mark it resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.module = models.ModuleGarantia
			if entry.Responsible == "" {
				if u, ok := opts.app.gate.Current(); ok {
					entry.Responsible = u.Name
				}
			}
			claim, err := opts.app.svc.Garantia.AddHistory(cmd.Context(), args[0], entry)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), claim)
		},
	}
	f := cmd.Flags()
	f.StringVar(&entry.Action, "action", "", "action taken (required)")
	f.StringVar(&entry.Details, "details", "", "details of the action")
	f.StringVar(&entry.Replacement, "replacement", "", "replacement part or product")
	f.StringVar(&entry.Repair, "repair", "", "repair performed")
	f.StringVar(&entry.Responsible, "responsible", "", "responsible person (default: current user)")
	return cmd
}

func newProgressCmd(opts *rootOptions) *cobra.Command {
	var (
		content     string
		responsible string
		percent     int
		status      string
	)
	cmd := &cobra.Command{
		Use:   "progress <project-id>",
		Short: "Log progress on an R&D project",
		Long:  "Append an update note to a project and optionally set its completion percentage or phase.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pd := opts.app.svc.PD
			opts.module = models.ModulePD
			id := args[0]

			if content != "" {
				if responsible == "" {
					if u, ok := opts.app.gate.Current(); ok {
						responsible = u.Name
					}
				}
				if _, err := pd.AddUpdate(ctx, id, content, responsible); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("percent") {
				if _, err := pd.SetProgress(ctx, id, percent); err != nil {
					return err
				}
			}
			if status != "" {
				if _, err := pd.SetStatus(ctx, id, models.ProjectStatus(status)); err != nil {
					return err
				}
			}
			project, err := pd.Projects.Get(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), project)
		},
	}
	f := cmd.Flags()
	f.StringVar(&content, "content", "", "update note")
	f.StringVar(&responsible, "responsible", "", "author of the note (default: current user)")
	f.IntVar(&percent, "percent", 0, "completion percentage, clamped to 0..100")
	f.StringVar(&status, "status", "", "new phase: research|development|testing|completed")
	return cmd
}

func newAttachCmd(opts *rootOptions) *cobra.Command {
	var doc models.Document
	cmd := &cobra.Command{
		Use:   "attach <supplier-id>",
		Short: "Attach a document to a supplier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.module = models.ModuleCompras
			if doc.Name == "" {
				return fmt.Errorf("--name is required")
			}
			added, err := opts.app.svc.Compras.AttachDocument(cmd.Context(), args[0], doc)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), added)
		},
	}
	f := cmd.Flags()
	f.StringVar(&doc.Name, "name", "", "document name (required)")
	f.StringVar(&doc.URL, "url", "", "where the document lives")
	f.StringVar(&doc.Type, "type", "", "document type, e.g. certificate")
	return cmd
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "stats [module...]",
		Short: "Print dashboard figures for modules",
		Long: `Print dashboard figures for the given modules, or for every module the
current user may use. --refresh first marks overdue production orders as
delayed and lapsed regulatory documents as expired.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := opts.app
			now := time.Now().UTC()

			tags := args
			if len(tags) == 0 {
				all := append(append([]string{}, models.Modules...), models.ModuleAdmin)
				for _, tag := range all {
					if a.gate.IsAuthorized(tag) {
						tags = append(tags, tag)
					}
				}
			}

			out := make(map[string]any, len(tags))
			for _, tag := range tags {
				opts.module = tag
				var (
					st  any
					err error
				)
				switch tag {
				case models.ModuleCompras:
					st, err = a.svc.Compras.Stats(ctx)
				case models.ModulePCP:
					if refresh {
						if _, err = a.svc.PCP.MarkDelayed(ctx, now); err != nil {
							return err
						}
					}
					st, err = a.svc.PCP.Stats(ctx)
				case models.ModulePD:
					st, err = a.svc.PD.Stats(ctx)
				case models.ModuleGarantia:
					st, err = a.svc.Garantia.Stats(ctx)
				case models.ModuleRegulatorios:
					if refresh {
						if _, err = a.svc.Regulatorios.MarkExpired(ctx, now); err != nil {
							return err
						}
					}
					st, err = a.svc.Regulatorios.Stats(ctx, now)
				case models.ModuleComercial:
					st, err = a.svc.Comercial.Stats(ctx)
				case models.ModuleAdmin:
					st, err = a.svc.Errors.Stats(ctx)
				default:
					return fmt.Errorf("unknown module %q", tag)
				}
				if err != nil {
					return err
				}
				out[tag] = st
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "update overdue statuses before counting")
	return cmd
}
