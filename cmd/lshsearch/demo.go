package main

import (
	stdErrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/gcbaptista/go-lsh-search/internal/corpus"
	"github.com/gcbaptista/go-lsh-search/internal/errors"
	"github.com/gcbaptista/go-lsh-search/internal/search"
)

// recallReport is the outcome of querying every original of a paired corpus.
type recallReport struct {
	Pairs         int
	Found         int
	Skipped       int
	TotalHits     int
	SimilaritySum float64
	Took          time.Duration
}

func (r recallReport) Recall() float64 {
	queried := r.Pairs - r.Skipped
	if queried == 0 {
		return 0
	}
	return float64(r.Found) / float64(queried)
}

func (r recallReport) MeanSimilarity() float64 {
	if r.Found == 0 {
		return 0
	}
	return r.SimilaritySum / float64(r.Found)
}

func newDemoCmd(opts *globalOptions) *cobra.Command {
	var (
		pairs  int
		length int
		seed   uint64
		flags  indexFlags
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Measure recall on a generated corpus of near-duplicate pairs",
		Long: `Generate random documents, add one small edit of each, index all of them and
report how often a query by the original returns its edited copy.

Examples:
  lshsearch demo
  lshsearch demo --pairs 5000 --length 200 -k 20 -w 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if pairs <= 0 {
				return fmt.Errorf("--pairs must be positive, got %d", pairs)
			}

			cfg, err := opts.load(stderr(cmd))
			if err != nil {
				return err
			}
			settings, err := flags.settings(cfg.Index, "demo")
			if err != nil {
				return err
			}

			gen := corpus.NewGenerator(seed)
			if length < gen.MinMutableLength() {
				return fmt.Errorf("--length must be at least %d", gen.MinMutableLength())
			}
			docs, generated, err := gen.PairedCorpus(pairs, length)
			if err != nil {
				return err
			}

			svc, build, err := buildLocal(cmd.Context(), stderr(cmd), docs, settings, cfg.Build.EffectiveWorkers(), flags.noProgress)
			if err != nil {
				return err
			}

			report, err := measureRecall(cmd, svc, generated, settings.TopN)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tbl := newTable(out)
			tbl.SetTitle("LSH recall")
			tbl.AppendRows([]table.Row{
				{"Documents", humanize.Comma(int64(len(docs)))},
				{"Corpus size", humanize.Bytes(uint64(len(docs) * length))},
				{"Shingle size (S)", settings.ShingleSize},
				{"Signature length (K)", settings.SignatureLength},
				{"Band width (W)", settings.BandWidth},
				{"Bands", settings.NumBands()},
				{"Top N", settings.TopN},
				{"Build time", build.Took.Round(time.Millisecond)},
				{"Query time", report.Took.Round(time.Millisecond)},
				{"Skipped queries", report.Skipped},
				{"Mean hits per query", fmt.Sprintf("%.2f", float64(report.TotalHits)/float64(max(1, pairs-report.Skipped)))},
				{"Mean pair similarity", fmt.Sprintf("%.4f", report.MeanSimilarity())},
			})
			tbl.Render()

			printRecall(out, report)
			return nil
		},
	}

	cmd.Flags().IntVar(&pairs, "pairs", 1000, "Number of original/edited pairs")
	cmd.Flags().IntVar(&length, "length", 100, "Characters per generated document")
	cmd.Flags().Uint64Var(&seed, "seed", 42, "Random seed")
	flags.register(cmd)

	return cmd
}

func measureRecall(cmd *cobra.Command, svc *search.Service, pairs []corpus.Pair, topN int) (recallReport, error) {
	report := recallReport{Pairs: len(pairs)}
	start := time.Now()

	for _, pair := range pairs {
		hits, err := svc.SearchByID(cmd.Context(), pair.OriginalID, topN)
		if stdErrors.Is(err, errors.ErrDocumentTooShort) {
			report.Skipped++
			continue
		}
		if err != nil {
			return recallReport{}, fmt.Errorf("query for document %d: %w", pair.OriginalID, err)
		}

		report.TotalHits += len(hits)
		for _, hit := range hits {
			if hit.DocID == pair.MutatedID {
				report.Found++
				report.SimilaritySum += hit.Similarity
				break
			}
		}
	}

	report.Took = time.Since(start)
	return report, nil
}

func printRecall(w io.Writer, report recallReport) {
	recall := report.Recall()
	c := color.New(color.FgGreen, color.Bold)
	switch {
	case recall < 0.5:
		c = color.New(color.FgRed, color.Bold)
	case recall < 0.9:
		c = color.New(color.FgYellow, color.Bold)
	}
	c.Fprintf(w, "Recall: %.2f%% (%s of %s pairs)\n",
		recall*100, humanize.Comma(int64(report.Found)), humanize.Comma(int64(report.Pairs-report.Skipped)))
}
