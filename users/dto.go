package users

import "github.com/user/emojicringe-go/models"

// UserCombosResponse is returned by GET /api/user/{userId}/emoji-combos.
type UserCombosResponse struct {
	User   models.UserSummary  `json:"user"`
	Combos []models.EmojiCombo `json:"combos"`
}
