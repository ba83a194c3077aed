package retriever

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"maintenance-qa-be/internal/pkg/logger"
)

type staticLoader struct {
	docs []Document
	err  error
}

func (l *staticLoader) LoadDocuments(ctx context.Context) ([]Document, error) {
	return l.docs, l.err
}

func testDocs() []Document {
	return []Document{
		{Source: "schema:0", Text: "table equipment columns id code name type status location criticality", SchemaFact: true},
		{Source: "glossary:status", Text: "equipment status values operational maintenance decommissioned"},
		{Source: "glossary:priority", Text: "work order priority scale low medium high emergency"},
		{Source: "procedure:last-maintenance", Text: "last maintenance is the newest maintenance log reachable through work orders"},
	}
}

func newTestRetriever(t *testing.T, docs []Document) *Retriever {
	t.Helper()
	r := New(&staticLoader{docs: docs}, nil, 3, logger.NewNopLogger())
	if err := r.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRetrieveKeywordOverlap(t *testing.T) {
	r := newTestRetriever(t, testDocs())

	got := r.Retrieve(context.Background(), "equipment status operational")
	if len(got) == 0 {
		t.Fatal("no snippets returned")
	}
	if got[0].Source != "glossary:status" {
		t.Errorf("top snippet = %s, want glossary:status", got[0].Source)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("snippets out of order at %d", i)
		}
	}
}

func TestRetrieveDeterministicOrdering(t *testing.T) {
	r := newTestRetriever(t, testDocs())

	first := r.Retrieve(context.Background(), "maintenance work orders priority")
	second := r.Retrieve(context.Background(), "maintenance work orders priority")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("retrieval not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestRetrieveTopK(t *testing.T) {
	r := newTestRetriever(t, testDocs())

	got := r.Retrieve(context.Background(), "equipment maintenance status work order")
	if len(got) > 3 {
		t.Errorf("got %d snippets, topK is 3", len(got))
	}
}

func TestRetrieveEmptyIndex(t *testing.T) {
	r := New(&staticLoader{}, nil, 3, logger.NewNopLogger())
	if err := r.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := r.Retrieve(context.Background(), "anything"); got != nil {
		t.Errorf("expected nil from empty index, got %+v", got)
	}
}

func TestRetrieveNoMatches(t *testing.T) {
	r := newTestRetriever(t, testDocs())

	if got := r.Retrieve(context.Background(), "xyzzy plugh"); len(got) != 0 {
		t.Errorf("expected no snippets, got %+v", got)
	}
}

func TestRebuildPropagatesLoaderError(t *testing.T) {
	r := New(&staticLoader{err: errors.New("db down")}, nil, 3, logger.NewNopLogger())
	if err := r.Rebuild(context.Background()); err == nil {
		t.Error("expected error from failed load")
	}
}

func TestInvalidateDropsIndex(t *testing.T) {
	r := newTestRetriever(t, testDocs())
	r.Invalidate()
	if got := r.Retrieve(context.Background(), "equipment status"); got != nil {
		t.Errorf("expected nil after invalidate, got %+v", got)
	}
}
