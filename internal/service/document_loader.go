package service

import (
	"context"
	"fmt"

	"maintenance-qa-be/internal/repository/contract"
	"maintenance-qa-be/pkg/pipeline/retriever"
	"maintenance-qa-be/pkg/schema"
	"maintenance-qa-be/pkg/utils"
)

// Long documents are chunked so one snippet never dominates the prompt.
const (
	chunkSize    = 800
	chunkOverlap = 120
)

// DocumentLoader feeds the retriever index from two sources: schema
// facts derived from the live catalog and curated documents stored in
// the database.
type DocumentLoader struct {
	documents contract.DocumentRepository
	catalog   *schema.Catalog
}

var _ retriever.Loader = &DocumentLoader{}

func NewDocumentLoader(documents contract.DocumentRepository, catalog *schema.Catalog) *DocumentLoader {
	return &DocumentLoader{documents: documents, catalog: catalog}
}

func (l *DocumentLoader) LoadDocuments(ctx context.Context) ([]retriever.Document, error) {
	facts := l.catalog.SchemaFacts()
	out := make([]retriever.Document, 0, len(facts))
	for i, fact := range facts {
		out = append(out, retriever.Document{
			Source:     fmt.Sprintf("schema:%d", i),
			Text:       fact,
			SchemaFact: true,
		})
	}

	stored, err := l.documents.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, doc := range stored {
		chunks := utils.SplitText(doc.Content, chunkSize, chunkOverlap)
		for i, chunk := range chunks {
			source := doc.Source
			if len(chunks) > 1 {
				source = fmt.Sprintf("%s#%d", doc.Source, i)
			}
			d := retriever.Document{
				Source:     source,
				Text:       chunk,
				SchemaFact: doc.SchemaFact,
			}
			// A stored embedding only matches the whole document.
			if len(chunks) == 1 {
				d.Embedding = doc.EmbeddingValue.Slice()
			}
			out = append(out, d)
		}
	}
	return out, nil
}
