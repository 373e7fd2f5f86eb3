package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/emitia/nfse-backoffice/internal/wizard/domain"
	"gorm.io/gorm"
)

type repo struct{}

// Provide builds the draft repository.
func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, draft *domain.Draft) error {
	return db.WithContext(ctx).Create(draft).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Draft, error) {
	var draft domain.Draft
	err := db.WithContext(ctx).First(&draft, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDraftNotFound
		}
		return nil, err
	}
	return &draft, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.Draft, error) {
	var drafts []*domain.Draft
	err := db.WithContext(ctx).
		Order("created_at desc, id desc").
		Find(&drafts).Error
	if err != nil {
		return nil, err
	}
	return drafts, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, draft *domain.Draft, expectedVersion int64) error {
	res := db.WithContext(ctx).
		Model(&domain.Draft{}).
		Where("id = ? AND version = ?", draft.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(draft)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrVersionConflict
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Draft{}, "id = ?", id).Error
}
