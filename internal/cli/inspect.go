package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskboard/internal/render"
	"taskboard/internal/storage"
)

func newInspectCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inspect [path]",
		Short: "Print a snapshot previously written by the shell's export command",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.ExportPath
			if len(args) == 1 {
				path = args[0]
			}
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}

			st, err := storage.NewSQLiteStorage(cmd.Context(), path)
			if err != nil {
				return err
			}
			defer st.Close()

			snap, err := st.LoadSnapshot(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			opts := render.Options{Format: f}
			fmt.Fprintf(out, "Snapshot taken %s, filter %s\n", snap.TakenAt.Format("2006-01-02 15:04:05"), snap.Filter)
			if err := render.Tasks(out, snap.Tasks, snap.Users, opts); err != nil {
				return err
			}
			return render.Users(out, snap.Users, opts)
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, markdown or csv")
	return cmd
}
