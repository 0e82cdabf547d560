package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const defaultDuplicateThreshold = 0.5

func newDuplicatesCmd(opts *globalOptions) *cobra.Command {
	var (
		patterns  []string
		exclude   []string
		threshold float64
		flags     indexFlags
	)

	cmd := &cobra.Command{
		Use:   "duplicates",
		Short: "List near-duplicate pairs in a corpus of files",
		Long: `Index the files matched by --corpus and list every pair that shares an LSH
bucket with Jaccard similarity at or above --threshold.

Examples:
  lshsearch duplicates --corpus 'docs/**/*.txt'
  lshsearch duplicates --corpus 'src/**/*.go' --exclude '**/*_test.go' --threshold 0.8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if threshold < 0 || threshold > 1 {
				return fmt.Errorf("--threshold must be within [0, 1], got %g", threshold)
			}

			cfg, err := opts.load(stderr(cmd))
			if err != nil {
				return err
			}
			settings, err := flags.settings(cfg.Index, "duplicates")
			if err != nil {
				return err
			}

			docs, err := loadCorpus(patterns, exclude)
			if err != nil {
				return err
			}

			svc, report, err := buildLocal(cmd.Context(), stderr(cmd), docs, settings, cfg.Build.EffectiveWorkers(), flags.noProgress)
			if err != nil {
				return err
			}

			pairs, err := svc.FindDuplicates(cmd.Context(), threshold)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "indexed %s of %s documents (%d skipped) in %s\n",
				humanize.Comma(int64(report.Indexed)), humanize.Comma(int64(report.Documents)),
				len(report.Skipped), report.Took)

			tbl := newTable(out)
			tbl.AppendHeader(table.Row{"Doc", "Name", "Doc", "Name", "Similarity"})
			for _, p := range pairs {
				tbl.AppendRow(table.Row{p.DocID1, p.Name1, p.DocID2, p.Name2, fmt.Sprintf("%.4f", p.Similarity)})
			}
			tbl.AppendFooter(table.Row{"", "", "", "Pairs", len(pairs)})
			tbl.Render()
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&patterns, "corpus", nil, "Glob patterns of files to index, e.g. 'docs/**/*.txt'")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Glob patterns of files to leave out")
	cmd.Flags().Float64Var(&threshold, "threshold", defaultDuplicateThreshold, "Minimum Jaccard similarity")
	flags.register(cmd)

	return cmd
}
