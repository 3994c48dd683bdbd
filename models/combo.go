package models

import "time"

// EmojiCombo is one posted card. Username is copied from the owner at creation
// time so listings do not need a join; usernames are immutable so it never drifts.
type EmojiCombo struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Emojis      string    `json:"emojis" gorm:"size:50;not null"`
	Description string    `json:"description" gorm:"size:200;not null"`
	CreatedBy   int64     `json:"created_by" gorm:"column:created_by;not null;index:idx_emoji_combos_created_by"`
	Username    string    `json:"username" gorm:"size:30;not null"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index:idx_emoji_combos_created_at"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Creator *User `json:"-" gorm:"foreignKey:CreatedBy;constraint:OnDelete:CASCADE"`
}

// TableName pins the gorm table name to the one used by the SQL migrations.
func (EmojiCombo) TableName() string { return "emoji_combos" }

// ComboPatch carries the fields of a partial update; nil means "leave as is".
type ComboPatch struct {
	Emojis      *string
	Description *string
}

// Empty reports whether the patch changes nothing.
func (p ComboPatch) Empty() bool {
	return p.Emojis == nil && p.Description == nil
}

// ComboPage is one page of a listing together with the unpaged total.
type ComboPage struct {
	Combos []EmojiCombo
	Total  int64
}
