package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/gcbaptista/go-lsh-search/config"
	"github.com/gcbaptista/go-lsh-search/internal/corpus"
	"github.com/gcbaptista/go-lsh-search/internal/indexing"
	"github.com/gcbaptista/go-lsh-search/internal/logger"
	"github.com/gcbaptista/go-lsh-search/internal/search"
	"github.com/gcbaptista/go-lsh-search/model"
	"github.com/gcbaptista/go-lsh-search/services"
	"github.com/gcbaptista/go-lsh-search/store"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	verbose    bool
}

// load reads the config and installs the logger. Command output goes to
// stdout, so logs from one-shot commands go to logOut instead.
func (g *globalOptions) load(logOut io.Writer) (*config.AppConfig, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.verbose {
		cfg.Logging.Level = "debug"
	}
	logger.SetupWriter(logOut, cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

// indexFlags override the configured index settings for one-shot commands.
type indexFlags struct {
	shingleSize     int
	signatureLength int
	bandWidth       int
	topN            int
	maxCandidates   int
	noProgress      bool
}

func (f *indexFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.shingleSize, "shingle-size", "s", 0, "Characters per shingle (0 = config value)")
	cmd.Flags().IntVarP(&f.signatureLength, "signature-length", "k", 0, "Signature length K (0 = config value)")
	cmd.Flags().IntVarP(&f.bandWidth, "band-width", "w", 0, "Signature values per band W (0 = config value)")
	cmd.Flags().IntVarP(&f.topN, "top-n", "n", -1, "Results to return (-1 = config value)")
	cmd.Flags().IntVar(&f.maxCandidates, "max-candidates", -1, "Candidate cap per query (-1 = config value, 0 = unlimited)")
	cmd.Flags().BoolVar(&f.noProgress, "no-progress", false, "Disable the progress bar")
}

// settings merges the flags over base and validates the result.
func (f *indexFlags) settings(base config.IndexSettings, name string) (config.IndexSettings, error) {
	settings := base
	settings.Name = name
	if f.shingleSize != 0 {
		settings.ShingleSize = f.shingleSize
	}
	if f.signatureLength != 0 {
		settings.SignatureLength = f.signatureLength
	}
	if f.bandWidth != 0 {
		settings.BandWidth = f.bandWidth
	}
	if f.topN >= 0 {
		settings.TopN = f.topN
	}
	if f.maxCandidates >= 0 {
		settings.MaxCandidates = f.maxCandidates
	}
	settings.ApplyDefaults()
	if err := settings.Validate(); err != nil {
		return config.IndexSettings{}, err
	}
	return settings, nil
}

// loadCorpus reads every file matched by patterns.
func loadCorpus(patterns []string, exclude []string) ([]model.Document, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("at least one --corpus pattern is required")
	}
	docs, err := corpus.Loader{Exclude: exclude}.Load(patterns...)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no files matched %v", patterns)
	}
	return docs, nil
}

// buildLocal builds an in-process index over docs, drawing a progress bar on
// w unless quiet is set.
func buildLocal(ctx context.Context, w io.Writer, docs []model.Document, settings config.IndexSettings, workers int, quiet bool) (*search.Service, indexing.BuildReport, error) {
	var progress func(done, total int)
	if !quiet {
		bar := newProgressBar(w, "signing documents", len(docs))
		progress = func(done, _ int) {
			_ = bar.Set(done)
		}
	}

	indexer := indexing.NewService(nil, indexing.BuildOptions{Workers: workers})
	idx, report, err := indexer.Build(ctx, docs, settings, progress)
	if err != nil {
		return nil, indexing.BuildReport{}, err
	}

	svc, err := search.NewService(idx, store.NewDocumentStore(docs), nil)
	if err != nil {
		return nil, indexing.BuildReport{}, err
	}
	return svc, report, nil
}

func newProgressBar(w io.Writer, description string, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

func newTable(w io.Writer) table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	return tbl
}

// renderHits prints ranked hits as a table.
func renderHits(w io.Writer, hits []services.Hit) {
	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"#", "Doc", "Name", "Similarity"})
	for i, hit := range hits {
		tbl.AppendRow(table.Row{i + 1, hit.DocID, hit.Name, fmt.Sprintf("%.4f", hit.Similarity)})
	}
	tbl.AppendFooter(table.Row{"", "", "Total", len(hits)})
	tbl.Render()
}

// stderr is where progress and logs go for one-shot commands.
func stderr(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stderr
	}
	return cmd.ErrOrStderr()
}
