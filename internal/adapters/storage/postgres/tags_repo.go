package postgres

import (
	"context"

	"gorm.io/gorm"

	"petkimlik/internal/domain/tags"
)

type TagsRepo struct {
	db *gorm.DB
}

func NewTagsRepo(db *gorm.DB) *TagsRepo {
	return &TagsRepo{db: db}
}

func (r *TagsRepo) CreateBatch(ctx context.Context, items []tags.Tag) error {
	if len(items) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).CreateInBatches(&items, 200).Error
	return translate(err, nil, tags.ErrCodeCollisions)
}

func (r *TagsRepo) GetByCode(ctx context.Context, code string) (tags.Tag, error) {
	var t tags.Tag
	err := r.db.WithContext(ctx).Where("code = ?", code).Take(&t).Error
	return t, translate(err, tags.ErrNotFound, nil)
}

func (r *TagsRepo) Update(ctx context.Context, t tags.Tag) error {
	res := r.db.WithContext(ctx).Model(&tags.Tag{ID: t.ID}).Updates(map[string]any{
		"animal_id":    t.AnimalID,
		"activated_at": t.ActivatedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return tags.ErrNotFound
	}
	return nil
}

// Activate condiciona el UPDATE a animal_id IS NULL: de dos activaciones
// simultáneas solo una encuentra la fila libre.
func (r *TagsRepo) Activate(ctx context.Context, t tags.Tag) error {
	res := r.db.WithContext(ctx).Model(&tags.Tag{}).
		Where("id = ? AND animal_id IS NULL", t.ID).
		Updates(map[string]any{
			"animal_id":    t.AnimalID,
			"activated_at": t.ActivatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return tags.ErrAlreadyActive
	}
	return nil
}

func (r *TagsRepo) ListByAnimal(ctx context.Context, animalID string) ([]tags.Tag, error) {
	var out []tags.Tag
	err := r.db.WithContext(ctx).Where("animal_id = ?", animalID).Order("activated_at DESC").Find(&out).Error
	return out, err
}

func (r *TagsRepo) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&tags.Tag{}).Where("animal_id IS NOT NULL").Count(&n).Error
	return n, err
}

func (r *TagsRepo) AddScan(ctx context.Context, s tags.TagScan) error {
	return r.db.WithContext(ctx).Create(&s).Error
}

func (r *TagsRepo) ListScansByAnimal(ctx context.Context, animalID string, limit int) ([]tags.TagScan, error) {
	q := r.db.WithContext(ctx).Where("animal_id = ?", animalID).Order("scanned_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []tags.TagScan
	err := q.Find(&out).Error
	return out, err
}
