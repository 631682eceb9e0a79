package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dwoolworth/bizdesk/models"
	"github.com/dwoolworth/bizdesk/session"
	"github.com/dwoolworth/bizdesk/syncbridge"
)

func newSyncCmd(opts *rootOptions) *cobra.Command {
	var (
		dir   string
		every time.Duration
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror every collection to a shared directory",
		Long: `Write one <collection>.json file per stored collection into the sync
directory. With --watch the mirror repeats every --every (default
BIZDESK_SYNC_INTERVAL) until interrupted; a tick that fires while the previous
sync is still running is skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			opts.module = models.ModuleAdmin
			if err := a.gate.Require(session.AdminRole); err != nil {
				return err
			}
			if dir == "" {
				dir = a.cfg.SyncDir
			}
			if dir == "" {
				return errors.New("no sync directory: pass --dir or set BIZDESK_SYNC_DIR")
			}
			if every <= 0 {
				every = a.cfg.SyncInterval
			}

			s, err := syncbridge.NewScheduler(a.db, syncbridge.Config{Dir: dir, Interval: every}, a.log)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := s.Run(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced to %s\n", dir)
			if !watch {
				return nil
			}

			s.Start()
			<-ctx.Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			s.Stop(stopCtx)
			fmt.Fprintf(cmd.OutOrStdout(), "stopped after %d syncs (%d skipped)\n", s.Runs(), s.Skipped())
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "destination directory (default BIZDESK_SYNC_DIR)")
	cmd.Flags().DurationVar(&every, "every", 0, "interval between syncs with --watch")
	cmd.Flags().BoolVar(&watch, "watch", false, "keep syncing until interrupted")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		out   string
		root  string
		files []string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Package the project files into a zip archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			opts.module = models.ModuleAdmin
			if err := a.gate.Require(session.AdminRole); err != nil {
				return err
			}
			if root == "" {
				root = a.cfg.ExportRoot
			}
			if len(files) == 0 {
				files = a.cfg.ExportFiles
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			added, skipped, err := syncbridge.Export(cmd.Context(), f, root, files, a.log)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d files", out, len(added))
			if len(skipped) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), ", skipped %v", skipped)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "bizdesk-project.zip", "archive to write")
	cmd.Flags().StringVar(&root, "root", "", "project root (default BIZDESK_EXPORT_ROOT)")
	cmd.Flags().StringSliceVar(&files, "files", nil, "files to include (default BIZDESK_EXPORT_FILES)")
	return cmd
}
