// Command lshsearch builds MinHash/LSH indexes over text corpora, answers
// near-duplicate queries from the command line and serves them over HTTP.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var opts globalOptions

	rootCmd := &cobra.Command{
		Use:   "lshsearch",
		Short: "Near-duplicate text retrieval with MinHash and LSH banding",
		Long: `lshsearch indexes documents by the bottom-K MinHash signature of their
character shingles, buckets the signatures into LSH bands and reranks the
colliding candidates by exact Jaccard similarity.

Commands:
  serve       run the HTTP API
  query       search a corpus of files by text or document id
  duplicates  list near-duplicate pairs in a corpus of files
  demo        measure recall on a generated corpus of mutated pairs`,
		Version:      Short(),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a config file (default ./lshsearch.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newServeCmd(&opts))
	rootCmd.AddCommand(newQueryCmd(&opts))
	rootCmd.AddCommand(newDuplicatesCmd(&opts))
	rootCmd.AddCommand(newDemoCmd(&opts))
	rootCmd.AddCommand(newConfigCmd(&opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
