package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"taskboard/internal/command"
	"taskboard/internal/render"
)

func newShellCommand(a *app) *cobra.Command {
	var (
		format  string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive command shell (reads commands from stdin)",
		Long: `Interactive command shell. Besides the commands below it understands "exit".

` + command.Usage,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			d := command.NewDispatcher(a.ws, render.Options{Format: f, Colors: !noColor}).
				WithExporter(command.SnapshotExporter(a.ws, a.cfg.ExportPath, true))
			sh := &shell{
				dispatcher: d,
				in:         cmd.InOrStdin(),
				out:        cmd.OutOrStdout(),
			}
			return sh.run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, markdown or csv")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colors in table output")
	return cmd
}

type shell struct {
	dispatcher *command.Dispatcher
	in         io.Reader
	out        io.Writer
}

func (s *shell) run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	fmt.Fprint(s.out, "> ")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			return nil
		}

		out, err := s.dispatcher.Exec(ctx, line)
		switch {
		case err != nil:
			fmt.Fprintf(s.out, "Error: %v\n", err)
		case out != "":
			fmt.Fprintln(s.out, out)
		}

		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(s.out, "> ")
	}
	return scanner.Err()
}
