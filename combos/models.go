package combos

import (
	"github.com/user/emojicringe-go/models"
)

// CreateRequest is the body of POST /api/emoji-combos.
type CreateRequest struct {
	Emojis      string `json:"emojis" validate:"notblank,max=50,emoji" example:"😂🔥"`
	Description string `json:"description" validate:"notblank,max=200" example:"When the code works on the first try"`
}

// UpdateRequest is the body of PUT /api/emoji-combos/{id}. Omitted fields are left unchanged.
type UpdateRequest struct {
	Emojis      *string `json:"emojis,omitempty" validate:"omitnil,notblank,max=50,emoji" example:"🤦‍♂️"`
	Description *string `json:"description,omitempty" validate:"omitnil,notblank,max=200" example:"Updated description"`
}

func (r UpdateRequest) patch() models.ComboPatch {
	return models.ComboPatch{Emojis: r.Emojis, Description: r.Description}
}

// ListQuery holds the parsed query string of GET /api/emoji-combos.
type ListQuery struct {
	Page      int
	Limit     int
	CreatedBy *int64
}

// Paging defaults and bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PaginatedCombosResponse is one page of the combo listing.
type PaginatedCombosResponse struct {
	Combos      []models.EmojiCombo `json:"combos"`
	CurrentPage int                 `json:"currentPage" example:"1"`
	TotalPages  int                 `json:"totalPages" example:"3"`
	TotalItems  int64               `json:"totalItems" example:"25"`
}

// DeletedEvent is the feed payload published when a combo is removed.
type DeletedEvent struct {
	ID int64 `json:"id"`
}
