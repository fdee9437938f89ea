package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"class-panel/api"
	"class-panel/internal/client"

	"github.com/spf13/cobra"
)

func main() {
	var addr string

	rootCmd := &cobra.Command{
		Use:          "panelctl",
		Short:        "Control a running class panel from the terminal",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&addr, "addr", envOr("PANEL_ADDR", "localhost:8080"), "panel address")

	newClient := func() *client.Client { return client.New(addr) }

	rootCmd.AddCommand(
		newStatusCmd(newClient),
		newTimerCmd(newClient, "start", "Start or resume the countdown"),
		newTimerCmd(newClient, "pause", "Pause the countdown"),
		newTimerCmd(newClient, "advance", "Record the current segment and move to the next one"),
		newTimerCmd(newClient, "reset", "Back to the first segment with an empty log"),
		newNoteCmd(newClient),
		newRosterCmd(newClient),
		newExportCmd(newClient),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newStatusCmd(newClient func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current segment, countdown and log summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newClient().Session(cmd.Context())
			if err != nil {
				return err
			}
			printSession(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func newTimerCmd(newClient func() *client.Client, action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newClient().Timer(cmd.Context(), action)
			if err != nil {
				return err
			}
			printSession(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func newNoteCmd(newClient func() *client.Client) *cobra.Command {
	var kind, key string

	cmd := &cobra.Command{
		Use:   "note [text...]",
		Short: "Record a content note, task or assignment",
		Long: `Record a note in the session log. Content notes are tied to the
current segment; tasks and assignments are not.

Example: panelctl note --kind assignment "essay on the 1930 revolution"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newClient().AddNote(cmd.Context(), kind, strings.Join(args, " "), key)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s  %-12s  %s\n",
				e.Timestamp.Local().Format(time.TimeOnly), e.Kind, e.Segment, e.Content)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "content", "content, task or assignment")
	cmd.Flags().StringVar(&key, "idempotency-key", "", "accept the note once per key")

	return cmd
}

func newRosterCmd(newClient func() *client.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Manage the attendance roster",
	}

	var file string
	setCmd := &cobra.Command{
		Use:   "set [names...]",
		Short: "Add names to the roster, one per argument or one per line of --file",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, "\n")
			if file != "" {
				var (
					data []byte
					err  error
				)
				if file == "-" {
					data, err = io.ReadAll(cmd.InOrStdin())
				} else {
					data, err = os.ReadFile(file)
				}
				if err != nil {
					return fmt.Errorf("read roster: %w", err)
				}
				text = string(data) + "\n" + text
			}

			r, err := newClient().SetRoster(cmd.Context(), text)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d added\n", r.Added)
			printStudents(cmd.OutOrStdout(), r.Students)
			return nil
		},
	}
	setCmd.Flags().StringVarP(&file, "file", "f", "", "read names from a file, - for stdin")

	var absent bool
	markCmd := &cobra.Command{
		Use:   "mark <name>",
		Short: "Mark a student present, or absent with --absent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newClient().SetPresence(cmd.Context(), args[0], !absent)
			if err != nil {
				return err
			}
			printStudents(cmd.OutOrStdout(), r.Students)
			return nil
		},
	}
	markCmd.Flags().BoolVar(&absent, "absent", false, "mark the student absent")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every name from the roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newClient().ClearRoster(cmd.Context())
		},
	}

	cmd.AddCommand(setCmd, markCmd, clearCmd)
	return cmd
}

func newExportCmd(newClient func() *client.Client) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:       "export <log|roster>",
		Short:     "Download the session log or the attendance list",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"log", "roster"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if out == "-" {
				_, err := newClient().Export(ctx, args[0], format, cmd.OutOrStdout())
				return err
			}

			tmp, err := os.CreateTemp(".", ".panelctl-export-*")
			if err != nil {
				return err
			}
			defer os.Remove(tmp.Name())

			name, err := newClient().Export(ctx, args[0], format, tmp)
			if cerr := tmp.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			if out == "" {
				out = name
			}
			if out == "" {
				out = fmt.Sprintf("%s.%s", args[0], format)
			}
			if err := os.Rename(tmp.Name(), out); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file, - for stdout (default: name chosen by the panel)")

	return cmd
}

func printSession(w io.Writer, s *api.SessionResponse) {
	state := "paused"
	if s.Running {
		state = "running"
	}

	fmt.Fprintf(w, "%s  %s", s.Course, s.Date)
	if s.Title != "" {
		fmt.Fprintf(w, "  %s", s.Title)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "segment %d/%d  %s (%d min)  %s left  %s\n",
		s.SegmentIndex+1, len(s.Segments), s.Segment.Name, s.Segment.Minutes, s.Remaining, state)
	fmt.Fprintf(w, "log: %d blocks, %d notes, %.1f of %.0f planned minutes spent\n",
		s.Summary.Blocks, s.Summary.Notes, s.Summary.SpentMinutes, s.Summary.PlannedMinutes)
}

func printStudents(w io.Writer, students []api.Student) {
	for _, st := range students {
		mark := " "
		if st.Present {
			mark = "x"
		}
		fmt.Fprintf(w, "[%s] %s\n", mark, st.Name)
	}
}
