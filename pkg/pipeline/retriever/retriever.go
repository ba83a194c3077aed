package retriever

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"maintenance-qa-be/internal/pkg/logger"
	"maintenance-qa-be/pkg/embedding"
)

// Snippet is one retrieved grounding fragment, ordered by score descending.
type Snippet struct {
	Source     string
	Text       string
	Score      float64
	SchemaFact bool
}

// Document is an indexable grounding source.
type Document struct {
	Source     string
	Text       string
	SchemaFact bool
	Embedding  []float32 // optional, pre-computed
}

// Loader supplies the documents for an index build.
type Loader interface {
	LoadDocuments(ctx context.Context) ([]Document, error)
}

type indexEntry struct {
	doc    Document
	tokens map[string]bool
}

// index is an immutable snapshot. Rebuilds produce a fresh index and
// swap the pointer, so readers never see partial state.
type index struct {
	entries []indexEntry
}

// Retriever ranks grounding snippets for a question. Reads never mutate
// the index; Rebuild constructs a new snapshot and swaps it in.
type Retriever struct {
	loader   Loader
	embedder embedding.EmbeddingProvider // nil disables the embedding path
	topK     int
	log      logger.ILogger

	mu  sync.RWMutex
	idx *index
}

func New(loader Loader, embedder embedding.EmbeddingProvider, topK int, log logger.ILogger) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{
		loader:   loader,
		embedder: embedder,
		topK:     topK,
		log:      log,
		idx:      &index{},
	}
}

// Rebuild loads documents and swaps in a fresh index.
func (r *Retriever) Rebuild(ctx context.Context) error {
	docs, err := r.loader.LoadDocuments(ctx)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}

	entries := make([]indexEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, indexEntry{
			doc:    doc,
			tokens: tokenize(doc.Text),
		})
	}
	fresh := &index{entries: entries}

	r.mu.Lock()
	r.idx = fresh
	r.mu.Unlock()

	r.log.Info("retriever", "index rebuilt", map[string]interface{}{
		"documents": len(entries),
	})
	return nil
}

// Invalidate drops the current index; the next Rebuild repopulates it.
// Used on schema-change signals.
func (r *Retriever) Invalidate() {
	r.mu.Lock()
	r.idx = &index{}
	r.mu.Unlock()
}

// RunRefresh rebuilds on a fixed interval until ctx is cancelled.
func (r *Retriever) RunRefresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Rebuild(ctx); err != nil {
				r.log.Warn("retriever", "scheduled rebuild failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
}

// Retrieve returns the top-K snippets for the question. Embedding
// similarity is preferred; keyword overlap is the degraded path when the
// embedding provider is unavailable or errors. Ordering is deterministic
// for identical index state and input: score descending, then source.
func (r *Retriever) Retrieve(ctx context.Context, normalizedQuestion string) []Snippet {
	r.mu.RLock()
	idx := r.idx
	r.mu.RUnlock()

	if len(idx.entries) == 0 {
		return nil
	}

	var queryVec []float32
	if r.embedder != nil {
		resp, err := r.embedder.Generate(normalizedQuestion, "search_query")
		if err != nil {
			r.log.Warn("retriever", "embedding unavailable, falling back to keyword overlap", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			queryVec = resp.Values
		}
	}

	queryTokens := tokenize(normalizedQuestion)
	scored := make([]Snippet, 0, len(idx.entries))
	for _, entry := range idx.entries {
		var score float64
		if queryVec != nil && len(entry.doc.Embedding) == len(queryVec) && len(queryVec) > 0 {
			score = cosine(queryVec, entry.doc.Embedding)
		} else {
			score = overlap(queryTokens, entry.tokens)
		}
		if score <= 0 {
			continue
		}
		scored = append(scored, Snippet{
			Source:     entry.doc.Source,
			Text:       entry.doc.Text,
			Score:      score,
			SchemaFact: entry.doc.SchemaFact,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Source < scored[j].Source
	})

	if len(scored) > r.topK {
		scored = scored[:r.topK]
	}
	return scored
}

func tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, field := range strings.Fields(strings.ToLower(text)) {
		token := strings.Trim(field, ".,;:()'\"?!")
		if len(token) > 2 {
			tokens[token] = true
		}
	}
	return tokens
}

// overlap is the Jaccard-style ratio of shared tokens to query tokens.
func overlap(query map[string]bool, doc map[string]bool) float64 {
	if len(query) == 0 {
		return 0
	}
	shared := 0
	for token := range query {
		if doc[token] {
			shared++
		}
	}
	return float64(shared) / float64(len(query))
}

func cosine(a []float32, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
