package search

import "github.com/gcbaptista/go-lsh-search/internal/shingle"

// preparedQuery is a query reduced to what ranking needs: its shingle set and band candidates.
type preparedQuery struct {
	set        shingle.Set
	candidates []int
}
