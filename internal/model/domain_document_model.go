package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DomainDocument is a grounding snippet for the context retriever:
// glossary entries, procedure notes, worked query examples.
type DomainDocument struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Source         string          `gorm:"type:varchar(255);not null;index"`
	Content        string          `gorm:"type:text;not null"`
	SchemaFact     bool            `gorm:"default:false"`
	Metadata       datatypes.JSON  `gorm:"type:jsonb"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text uses 768 dimensions
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (DomainDocument) TableName() string {
	return "domain_documents"
}
