package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/config"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/engine"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/evalcache"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/extractor"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/pipeline"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/source"
)

const maxTitleWidth = 60

type filterOptions struct {
	input  string
	url    string
	output string
	format string
}

func newFilterCommand() *cobra.Command {
	opts := &filterOptions{}
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Filter a listing page once and report every decision",
		Example: `  deal-filter filter --input deals.html --output filtered.html
  deal-filter filter --url https://www.mydealz.de/ --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := loadDeps(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = d.log.Sync() }()
			return runFilter(cmd, d, opts)
		},
	}

	cmd.Flags().StringVar(&opts.input, "input", "", "listing HTML file")
	cmd.Flags().StringVar(&opts.url, "url", "", "listing page URL")
	cmd.Flags().StringVar(&opts.output, "output", "", "write the filtered page to this file")
	cmd.Flags().StringVar(&opts.format, "format", "table", "report format: table or json")
	cmd.MarkFlagsMutuallyExclusive("input", "url")
	return cmd
}

func runFilter(cmd *cobra.Command, d *deps, opts *filterOptions) error {
	ctx := cmd.Context()

	srcCfg := d.cfg.Pipeline.Source
	switch {
	case opts.input != "":
		srcCfg = config.SourceConfig{Kind: config.SourceFile, Path: opts.input}
	case opts.url != "":
		srcCfg.Kind, srcCfg.URL = config.SourceHTTP, opts.url
	}
	if srcCfg.Path == "" && srcCfg.URL == "" {
		return errors.New("no listing source: pass --input or --url, or configure pipeline.source")
	}
	output := opts.output
	if output == "" {
		output = d.cfg.Pipeline.Output
	}

	store, kv, err := openSettings(ctx, d)
	if err != nil {
		return err
	}
	defer closeStorage(kv, d.log)

	sel := extractor.DefaultSelectors()
	src, err := source.New(srcCfg, output, sel, d.log)
	if err != nil {
		return err
	}
	runner, err := pipeline.NewRunner(pipeline.Config{
		Source:    src,
		Extractor: extractor.New(sel),
		Rules:     rulesOf(store, engine.New(store.Current(), d.log)),
		Cache:     evalcache.New(d.cfg.Pipeline.CacheMaxEntries),
		Logger:    d.log,
	})
	if err != nil {
		return err
	}

	result, err := runner.RunPass(ctx)
	if err != nil {
		return err
	}

	switch opts.format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "table":
		renderDecisions(cmd.OutOrStdout(), result)
		return nil
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
}

func renderDecisions(w io.Writer, result pipeline.PassResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Title", "Price", "Score", "Source", "Hidden", "Reason", "Rule"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Title", WidthMax: maxTitleWidth},
		{Name: "Price", Align: text.AlignRight},
		{Name: "Score", Align: text.AlignRight},
	})

	for _, d := range result.Decisions {
		t.AppendRow(table.Row{
			d.Item.ID,
			d.Item.Title(),
			formatOptional(d.Item.Price),
			formatOptional(d.Item.Score),
			d.Item.SourceName,
			d.Decision.Hide,
			d.Decision.Reason,
			d.Decision.Rule,
		})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d items", result.Items), "", "", "", result.Hidden, "", ""})
	t.Render()

	if result.Failures > 0 {
		fmt.Fprintf(w, "%d items could not be evaluated\n", result.Failures)
	}
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
