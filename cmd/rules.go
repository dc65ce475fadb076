package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/extractor"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/importer"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/logger"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/settings"
)

const defaultEditor = "vi"

// withSettings loads deps and the settings store, runs fn and closes storage.
func withSettings(fn func(cmd *cobra.Command, args []string, d *deps, store *settings.Store) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		d, err := loadDeps(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = d.log.Sync() }()

		store, kv, err := openSettings(cmd.Context(), d)
		if err != nil {
			return err
		}
		defer closeStorage(kv, d.log)
		return fn(cmd, args, d, store)
	}
}

func newRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and edit filter rules",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the current rules",
			Args:  cobra.NoArgs,
			RunE:  withSettings(runRulesShow),
		},
		&cobra.Command{
			Use:   "edit",
			Short: "Edit the rules in $EDITOR",
			Args:  cobra.NoArgs,
			RunE:  withSettings(runRulesEdit),
		},
		&cobra.Command{
			Use:   "export [file]",
			Short: "Export the rules as JSON to a file or stdout",
			Args:  cobra.MaximumNArgs(1),
			RunE:  withSettings(runRulesExport),
		},
		&cobra.Command{
			Use:   "import <file>",
			Short: "Merge rules from a JSON export",
			Args:  cobra.ExactArgs(1),
			RunE:  withSettings(runRulesImport),
		},
		&cobra.Command{
			Use:   "hide <id>",
			Short: "Hide one item by id",
			Args:  cobra.ExactArgs(1),
			RunE:  withSettings(runRulesHide),
		},
		&cobra.Command{
			Use:   "reset-hidden",
			Short: "Clear every manually hidden id",
			Args:  cobra.NoArgs,
			RunE:  withSettings(runRulesResetHidden),
		},
		&cobra.Command{
			Use:     "max-price <value>",
			Short:   "Set the price ceiling; 0 disables it",
			Example: "  deal-filter rules max-price 1.299,00",
			Args:    cobra.ExactArgs(1),
			RunE:    withSettings(runRulesMaxPrice),
		},
		&cobra.Command{
			Use:   "import-sources <file.xlsx>",
			Short: "Block sources listed in a spreadsheet (columns: id, name)",
			Args:  cobra.ExactArgs(1),
			RunE:  withSettings(runRulesImportSources),
		},
	)
	return cmd
}

func runRulesShow(cmd *cobra.Command, _ []string, _ *deps, store *settings.Store) error {
	rules := store.Current()
	out := cmd.OutOrStdout()

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Rules " + store.Version())
	t.AppendHeader(table.Row{"Setting", "Value"})
	t.AppendRows([]table.Row{
		{"Exclude words", len(rules.ExcludeWords)},
		{"Whitelist words", len(rules.WhitelistWords)},
		{"Blocked sources", len(rules.BlockedSources)},
		{"Blocked authors", len(rules.BlockedAuthors)},
		{"Max price", rules.MaxPrice},
		{"Hide cold items", rules.HideColdItems},
		{"Strip source names", rules.StripSourceNames},
		{"Manually hidden", len(rules.ManuallyHiddenIDs)},
	})
	t.Render()

	doc, err := settings.MarshalEditable(rules)
	if err != nil {
		return err
	}
	_, err = out.Write(doc)
	return err
}

func runRulesEdit(cmd *cobra.Command, _ []string, d *deps, store *settings.Store) error {
	doc, err := settings.MarshalEditable(store.Current())
	if err != nil {
		return err
	}

	f, err := os.CreateTemp("", "deal-filter-rules-*.yml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(f.Name())
	if _, err = f.Write(doc); err != nil {
		_ = f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = f.Close(); err != nil {
		return err
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}
	edit := exec.CommandContext(cmd.Context(), editor, f.Name())
	edit.Stdin, edit.Stdout, edit.Stderr = os.Stdin, cmd.OutOrStdout(), cmd.ErrOrStderr()
	if err = edit.Run(); err != nil {
		return fmt.Errorf("run editor %s: %w", editor, err)
	}

	edited, err := os.ReadFile(f.Name())
	if err != nil {
		return fmt.Errorf("read edited rules: %w", err)
	}
	rules, err := settings.UnmarshalEditable(edited)
	if err != nil {
		return err
	}

	before := store.Version()
	store.Update(cmd.Context(), rules)
	if store.Version() == before {
		fmt.Fprintln(cmd.OutOrStdout(), "No changes.")
		return nil
	}
	d.log.Info("Rules updated from editor", logger.String("version", store.Version()))
	fmt.Fprintf(cmd.OutOrStdout(), "Rules saved (version %s).\n", store.Version())
	return nil
}

func runRulesExport(cmd *cobra.Command, args []string, _ *deps, store *settings.Store) error {
	payload, err := store.Export()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(payload))
		return err
	}
	if err = os.WriteFile(args[0], payload, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rules exported to %s\n", args[0])
	return nil
}

func runRulesImport(cmd *cobra.Command, args []string, _ *deps, store *settings.Store) error {
	payload, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	if err = store.Import(cmd.Context(), payload); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rules imported (version %s).\n", store.Version())
	return nil
}

func runRulesHide(cmd *cobra.Command, args []string, _ *deps, store *settings.Store) error {
	if store.HideItem(cmd.Context(), args[0]) {
		fmt.Fprintf(cmd.OutOrStdout(), "Item %s hidden.\n", args[0])
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Item %s was already hidden.\n", args[0])
	}
	return nil
}

func runRulesResetHidden(cmd *cobra.Command, _ []string, _ *deps, store *settings.Store) error {
	n := store.ResetHidden(cmd.Context())
	fmt.Fprintf(cmd.OutOrStdout(), "%d manually hidden items restored.\n", n)
	return nil
}

func runRulesMaxPrice(cmd *cobra.Command, args []string, _ *deps, store *settings.Store) error {
	v := extractor.ParseNumber(args[0])
	if v == nil {
		return fmt.Errorf("not a number: %q", args[0])
	}
	set := store.SetMaxPrice(cmd.Context(), *v)
	if set == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Price ceiling disabled.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Price ceiling set to %g.\n", set)
	return nil
}

func runRulesImportSources(cmd *cobra.Command, args []string, d *deps, store *settings.Store) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer f.Close()

	res, err := importer.ReadSources(f)
	if err != nil {
		return err
	}
	for _, rowErr := range res.Errors {
		d.log.Warn("Skipping spreadsheet row", logger.Int("row", rowErr.Row), logger.String("error", rowErr.Error))
	}
	if len(res.Sources) == 0 {
		return errors.New("no sources found in " + args[0])
	}

	rules := store.Current()
	var added int
	rules.BlockedSources, added = importer.Merge(rules.BlockedSources, res.Sources)
	store.Update(cmd.Context(), rules)

	fmt.Fprintf(cmd.OutOrStdout(), "%d sources blocked (%d already present, %d rows skipped).\n",
		added, len(res.Sources)-added, len(res.Errors))
	return nil
}

