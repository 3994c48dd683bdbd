package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/emojicringe-go/models"
	"github.com/user/emojicringe-go/store"
)

// ComboRepository persists combos in the emoji_combos table.
type ComboRepository struct {
	pool *pgxpool.Pool
}

const comboColumns = `id, emojis, description, created_by, username, created_at, updated_at`

// newestFirst is the listing order; id breaks timestamp ties.
const newestFirst = `ORDER BY created_at DESC, id DESC`

func scanCombo(row pgx.Row) (*models.EmojiCombo, error) {
	var c models.EmojiCombo
	if err := row.Scan(&c.ID, &c.Emojis, &c.Description, &c.CreatedBy, &c.Username, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func collectCombos(rows pgx.Rows) ([]models.EmojiCombo, error) {
	combos, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.EmojiCombo, error) {
		c, err := scanCombo(row)
		if err != nil {
			return models.EmojiCombo{}, err
		}
		return *c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan combos: %w", err)
	}
	return combos, nil
}

func (r *ComboRepository) Create(ctx context.Context, combo *models.EmojiCombo) (*models.EmojiCombo, error) {
	query := `INSERT INTO emoji_combos (emojis, description, created_by, username)
              VALUES ($1, $2, $3, $4)
              RETURNING ` + comboColumns
	return scanCombo(r.pool.QueryRow(ctx, query, combo.Emojis, combo.Description, combo.CreatedBy, combo.Username))
}

func (r *ComboRepository) FindByID(ctx context.Context, id int64) (*models.EmojiCombo, error) {
	return scanCombo(r.pool.QueryRow(ctx, `SELECT `+comboColumns+` FROM emoji_combos WHERE id = $1`, id))
}

func (r *ComboRepository) List(ctx context.Context, params store.ListParams) (*models.ComboPage, error) {
	// $1 IS NULL disables the owner filter without building SQL dynamically.
	where := `WHERE ($1::bigint IS NULL OR created_by = $1)`

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM emoji_combos `+where, params.CreatedBy).Scan(&total); err != nil {
		return nil, fmt.Errorf("count combos: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+comboColumns+` FROM emoji_combos `+where+` `+newestFirst+` LIMIT $2 OFFSET $3`,
		params.CreatedBy, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("list combos: %w", err)
	}
	combos, err := collectCombos(rows)
	if err != nil {
		return nil, err
	}
	return &models.ComboPage{Combos: combos, Total: total}, nil
}

func (r *ComboRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.EmojiCombo, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+comboColumns+` FROM emoji_combos WHERE created_by = $1 `+newestFirst, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list combos by owner: %w", err)
	}
	return collectCombos(rows)
}

func (r *ComboRepository) Update(ctx context.Context, id, ownerID int64, patch models.ComboPatch) (*models.EmojiCombo, error) {
	query := `UPDATE emoji_combos
              SET emojis = COALESCE($1, emojis),
                  description = COALESCE($2, description),
                  updated_at = now()
              WHERE id = $3 AND created_by = $4
              RETURNING ` + comboColumns
	return scanCombo(r.pool.QueryRow(ctx, query, patch.Emojis, patch.Description, id, ownerID))
}

func (r *ComboRepository) Delete(ctx context.Context, id int64, ownerID *int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM emoji_combos WHERE id = $1 AND ($2::bigint IS NULL OR created_by = $2)`,
		id, ownerID)
	if err != nil {
		return fmt.Errorf("delete combo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
