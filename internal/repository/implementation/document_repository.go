package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"maintenance-qa-be/internal/model"
	"maintenance-qa-be/internal/repository/contract"
)

type DocumentRepositoryImpl struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &DocumentRepositoryImpl{db: db}
}

func (r *DocumentRepositoryImpl) Create(ctx context.Context, document *model.DomainDocument) error {
	return r.db.WithContext(ctx).Create(document).Error
}

func (r *DocumentRepositoryImpl) GetById(ctx context.Context, id uuid.UUID) (*model.DomainDocument, error) {
	var document model.DomainDocument
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&document).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &document, nil
}

func (r *DocumentRepositoryImpl) GetAll(ctx context.Context) ([]model.DomainDocument, error) {
	var documents []model.DomainDocument
	if err := r.db.WithContext(ctx).Order("source asc").Find(&documents).Error; err != nil {
		return nil, err
	}
	return documents, nil
}

func (r *DocumentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.DomainDocument{}).Error
}
