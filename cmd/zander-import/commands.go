package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/JonMunkholm/zander/internal/application"
	"github.com/JonMunkholm/zander/internal/core"
	"github.com/JonMunkholm/zander/internal/session"
	"github.com/spf13/cobra"
)

var (
	duplicates  string
	assumeYes   bool
	templateOut string
)

// templateCmd downloads the CSV template.
var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Download the CSV import template",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		b, err := c.Template(cmd.Context())
		if err != nil {
			return err
		}
		if templateOut == "" {
			_, err = cmd.OutOrStdout().Write(b)
			return err
		}
		if err := os.WriteFile(templateOut, b, 0o644); err != nil {
			return fmt.Errorf("write template: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "template written to %s\n", templateOut)
		return nil
	},
}

// previewCmd validates a file and prints what an import would do.
var previewCmd = &cobra.Command{
	Use:   "preview FILE",
	Short: "Validate a CSV file without importing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := loadSession(cmd, args[0])
		if err != nil {
			return err
		}
		st := sess.Snapshot()
		writePreview(cmd.OutOrStdout(), st.Results)
		writeSummary(cmd.OutOrStdout(), st.Summary)
		return nil
	},
}

// runCmd validates and imports a file.
var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Validate and import a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		action, err := core.ParseDuplicateAction(duplicates)
		if err != nil {
			return err
		}

		sess, err := loadSession(cmd, args[0])
		if err != nil {
			return err
		}
		if err := sess.SetDuplicateAction(action); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		st := sess.Snapshot()
		writePreview(out, st.Results)
		writeSummary(out, st.Summary)

		if !sess.CanCommit() {
			return fmt.Errorf("nothing to import: no valid rows")
		}

		if !assumeYes {
			ok, err := confirm(cmd, fmt.Sprintf("Import %d valid rows, %s duplicates? [y/N] ", st.Summary.Valid, action))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "aborted")
				return nil
			}
		}

		result, err := sess.Commit(cmd.Context())
		if err != nil {
			return err
		}
		writeResult(out, result)
		return nil
	},
}

// tuiCmd starts the interactive importer.
var tuiCmd = &cobra.Command{
	Use:   "tui [FILE]",
	Short: "Import interactively in the terminal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		var path string
		if len(args) == 1 {
			path = args[0]
		}
		return application.Run(cmd.Context(), session.New(c), path)
	},
}

// loadSession reads path and runs it through validation.
func loadSession(cmd *cobra.Command, path string) (*session.Session, error) {
	c, err := newClient()
	if err != nil {
		return nil, err
	}

	text, err := core.ReadImportFile(path)
	if err != nil {
		return nil, err
	}

	sess := session.New(c)
	if err := sess.LoadFile(cmd.Context(), path, text); err != nil {
		return nil, err
	}
	return sess, nil
}

func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
