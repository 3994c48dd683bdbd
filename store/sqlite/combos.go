package sqlite

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/user/emojicringe-go/models"
	"github.com/user/emojicringe-go/store"
)

// ComboRepository persists combos through gorm.
type ComboRepository struct {
	db *gorm.DB
}

const newestFirst = "created_at DESC, id DESC"

func (r *ComboRepository) Create(ctx context.Context, combo *models.EmojiCombo) (*models.EmojiCombo, error) {
	if err := r.db.WithContext(ctx).Create(combo).Error; err != nil {
		return nil, translate(err)
	}
	return combo, nil
}

func (r *ComboRepository) FindByID(ctx context.Context, id int64) (*models.EmojiCombo, error) {
	var c models.EmojiCombo
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *ComboRepository) List(ctx context.Context, params store.ListParams) (*models.ComboPage, error) {
	q := r.db.WithContext(ctx).Model(&models.EmojiCombo{})
	if params.CreatedBy != nil {
		q = q.Where("created_by = ?", *params.CreatedBy)
	}
	// Shared by the count and the page query.
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count combos: %w", err)
	}

	combos := []models.EmojiCombo{}
	if err := q.Order(newestFirst).Offset(params.Offset).Limit(params.Limit).Find(&combos).Error; err != nil {
		return nil, fmt.Errorf("list combos: %w", err)
	}
	return &models.ComboPage{Combos: combos, Total: total}, nil
}

func (r *ComboRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.EmojiCombo, error) {
	combos := []models.EmojiCombo{}
	err := r.db.WithContext(ctx).Where("created_by = ?", ownerID).Order(newestFirst).Find(&combos).Error
	if err != nil {
		return nil, fmt.Errorf("list combos by owner: %w", err)
	}
	return combos, nil
}

func (r *ComboRepository) Update(ctx context.Context, id, ownerID int64, patch models.ComboPatch) (*models.EmojiCombo, error) {
	var updated models.EmojiCombo
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND created_by = ?", id, ownerID).First(&updated).Error; err != nil {
			return err
		}
		changes := map[string]any{"updated_at": time.Now()}
		if patch.Emojis != nil {
			changes["emojis"] = *patch.Emojis
		}
		if patch.Description != nil {
			changes["description"] = *patch.Description
		}
		if err := tx.Model(&updated).Updates(changes).Error; err != nil {
			return err
		}
		return tx.First(&updated, id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &updated, nil
}

func (r *ComboRepository) Delete(ctx context.Context, id int64, ownerID *int64) error {
	q := r.db.WithContext(ctx).Where("id = ?", id)
	if ownerID != nil {
		q = q.Where("created_by = ?", *ownerID)
	}
	res := q.Delete(&models.EmojiCombo{})
	if res.Error != nil {
		return fmt.Errorf("delete combo: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
