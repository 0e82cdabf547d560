package indexing

import (
	"context"
	"fmt"
	"runtime"
	"testing"

	"github.com/gcbaptista/go-lsh-search/internal/corpus"
)

// BenchmarkBuild compares single-worker and all-core builds over synthetic corpora.
func BenchmarkBuild(b *testing.B) {
	sizes := []int{100, 1000, 10000}
	workerCounts := []int{1, runtime.NumCPU()}

	for _, size := range sizes {
		docs := corpus.NewGenerator(42).Documents(size, 100)
		for _, workers := range workerCounts {
			b.Run(fmt.Sprintf("docs_%d/workers_%d", size, workers), func(b *testing.B) {
				opts := BuildOptions{Workers: workers}
				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if _, _, err := Build(context.Background(), docs, newTestSettings(), opts); err != nil {
						b.Fatalf("Build failed: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkBuildSignatureLength shows how K drives build cost.
func BenchmarkBuildSignatureLength(b *testing.B) {
	docs := corpus.NewGenerator(7).Documents(1000, 100)
	for _, k := range []int{10, 50, 100} {
		b.Run(fmt.Sprintf("k_%d", k), func(b *testing.B) {
			settings := newTestSettings()
			settings.SignatureLength = k
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, _, err := Build(context.Background(), docs, settings, DefaultBuildOptions()); err != nil {
					b.Fatalf("Build failed: %v", err)
				}
			}
		})
	}
}
