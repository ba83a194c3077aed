package contract

import (
	"context"

	"github.com/google/uuid"

	"maintenance-qa-be/internal/model"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *model.DomainDocument) error
	GetById(ctx context.Context, id uuid.UUID) (*model.DomainDocument, error)
	GetAll(ctx context.Context) ([]model.DomainDocument, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
