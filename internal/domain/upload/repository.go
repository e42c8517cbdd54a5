package upload

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, img *Image) error
	GetByID(ctx context.Context, id string) (*Image, error)
	Delete(ctx context.Context, id string) error
	ListByUserID(ctx context.Context, userID int64) ([]*Image, error)
	ListByBatchID(ctx context.Context, batchID string) ([]*Image, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, img *Image) error {
	return r.db.WithContext(ctx).Create(img).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*Image, error) {
	var img Image
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&img).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&Image{}).Error
}

func (r *repository) ListByUserID(ctx context.Context, userID int64) ([]*Image, error) {
	var images []*Image
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&images).Error
	return images, err
}

func (r *repository) ListByBatchID(ctx context.Context, batchID string) ([]*Image, error) {
	var images []*Image
	err := r.db.WithContext(ctx).Where("batch_id = ?", batchID).Order("created_at ASC").Find(&images).Error
	return images, err
}
