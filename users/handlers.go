package users

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/emojicringe-go/apperror"
	"github.com/user/emojicringe-go/respond"
)

type UserHandlers struct {
	service *UserService
}

func NewUserHandlers(service *UserService) *UserHandlers {
	return &UserHandlers{service: service}
}

// RegisterRoutes mounts the user endpoints on an /api router.
func (h *UserHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/users", h.HandleListUsers())
	r.Get("/user/{userId}/emoji-combos", h.HandleGetUserCombos())
}

// HandleListUsers godoc
// @Summary List users
// @Description Ids and usernames only, for the owner filter.
// @Tags Users
// @Produce json
// @Success 200 {array} models.UserSummary
// @Router /users [get]
func (h *UserHandlers) HandleListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := h.service.ListUsers(r.Context())
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, users)
	}
}

// HandleGetUserCombos godoc
// @Summary A user's combos
// @Tags Users
// @Produce json
// @Param userId path int true "User id"
// @Success 200 {object} users.UserCombosResponse
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Router /user/{userId}/emoji-combos [get]
func (h *UserHandlers) HandleGetUserCombos() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
		if err != nil {
			respond.Error(w, r, apperror.NewNotFoundError("User not found", nil))
			return
		}

		resp, err := h.service.GetUserCombos(r.Context(), userID)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, resp)
	}
}
