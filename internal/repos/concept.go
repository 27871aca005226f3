package repos

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/veridoc/ontology-backend/internal/platform/logger"
	"github.com/veridoc/ontology-backend/internal/types"
)

type ConceptRepo interface {
	LoadAll(ctx context.Context) ([]*types.ConceptRecord, error)
	Upsert(ctx context.Context, rec *types.ConceptRecord) error
	Delete(ctx context.Context, id string) error
}

type conceptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptRepo(db *gorm.DB, baseLog *logger.Logger) ConceptRepo {
	return &conceptRepo{db: db, log: baseLog.With("repo", "ConceptRepo")}
}

func (r *conceptRepo) LoadAll(ctx context.Context) ([]*types.ConceptRecord, error) {
	var results []*types.ConceptRecord
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *conceptRepo) Upsert(ctx context.Context, rec *types.ConceptRecord) error {
	if rec == nil {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(rec).Error
}

func (r *conceptRepo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.ConceptRecord{}).Error
}
