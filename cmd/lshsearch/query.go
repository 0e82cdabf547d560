package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/gcbaptista/go-lsh-search/services"
)

func newQueryCmd(opts *globalOptions) *cobra.Command {
	var (
		patterns []string
		exclude  []string
		text     string
		docID    int
		flags    indexFlags
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Search a corpus of files for near-duplicates of a text or document",
		Long: `Index the files matched by --corpus and rank the near-duplicates of either
--text or the document at position --doc.

Examples:
  lshsearch query --corpus 'docs/**/*.txt' --text "the quick brown fox"
  lshsearch query --corpus 'notes/*.md' --doc 3 -k 20 -w 4 -n 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (text == "") == (docID < 0) {
				return fmt.Errorf("exactly one of --text or --doc is required")
			}

			cfg, err := opts.load(stderr(cmd))
			if err != nil {
				return err
			}
			settings, err := flags.settings(cfg.Index, "query")
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

			query := services.SearchQuery{Query: text}
			if docID >= 0 {
				query = services.SearchQuery{DocID: &docID}
			}
			result, err := svc.Execute(cmd.Context(), query)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "indexed %s of %s documents in %s, %s candidates\n",
				humanize.Comma(int64(report.Indexed)), humanize.Comma(int64(report.Documents)),
				report.Took, humanize.Comma(int64(result.Candidates)))
			renderHits(out, result.Hits)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&patterns, "corpus", nil, "Glob patterns of files to index, e.g. 'docs/**/*.txt'")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Glob patterns of files to leave out")
	cmd.Flags().StringVarP(&text, "text", "t", "", "Query text")
	cmd.Flags().IntVarP(&docID, "doc", "d", -1, "Query by the indexed document at this position")
	flags.register(cmd)
	cmd.MarkFlagsMutuallyExclusive("text", "doc")

	return cmd
}
