package combos

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/emojicringe-go/apperror"
	"github.com/user/emojicringe-go/auth"
	"github.com/user/emojicringe-go/respond"
)

// ComboHandler exposes ComboService over HTTP.
type ComboHandler struct {
	service ComboService
	stream  http.Handler
}

// NewComboHandler creates a new ComboHandler. stream, when not nil, serves
// GET /emoji-combos/stream.
func NewComboHandler(service ComboService, stream http.Handler) *ComboHandler {
	return &ComboHandler{service: service, stream: stream}
}

// RegisterRoutes mounts the combo endpoints on an /api router. requireAuth
// guards the write routes and /my-emoji-combos.
func (h *ComboHandler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/emoji-combos", func(r chi.Router) {
		r.Get("/", h.listCombos)
		if h.stream != nil {
			r.Method(http.MethodGet, "/stream", h.stream)
		}
		r.Get("/{id}", h.getCombo)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", h.createCombo)
			r.Put("/{id}", h.updateCombo)
			r.Delete("/{id}", h.deleteCombo)
		})
	})
	r.With(requireAuth).Get("/my-emoji-combos", h.listMyCombos)
}

// ParseListQuery reads page, limit and createdBy. Missing or out-of-range
// page and limit fall back to the defaults; limit is capped at MaxLimit.
// A createdBy that is not an integer is a BadRequest.
func ParseListQuery(values url.Values) (ListQuery, error) {
	q := ListQuery{Page: DefaultPage, Limit: DefaultLimit}

	if p, err := strconv.Atoi(values.Get("page")); err == nil && p >= 1 {
		q.Page = p
	}
	if l, err := strconv.Atoi(values.Get("limit")); err == nil && l >= 1 {
		q.Limit = min(l, MaxLimit)
	}
	if raw := values.Get("createdBy"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return q, apperror.NewBadRequestError("createdBy must be a user id", err)
		}
		q.CreatedBy = &id
	}
	return q, nil
}

// comboID parses the {id} path parameter. Ids that cannot exist are reported
// as missing combos.
func comboID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperror.NewNotFoundError(msgComboNotFound, nil)
	}
	return id, nil
}

// listCombos godoc
// @Summary List emoji combos
// @Description Newest first, paginated, optionally filtered by owner.
// @Tags EmojiCombos
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param createdBy query int false "Owner user id"
// @Success 200 {object} combos.PaginatedCombosResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Router /emoji-combos [get]
func (h *ComboHandler) listCombos(w http.ResponseWriter, r *http.Request) {
	q, err := ParseListQuery(r.URL.Query())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	resp, err := h.service.List(r.Context(), q)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

// getCombo godoc
// @Summary Get an emoji combo
// @Tags EmojiCombos
// @Produce json
// @Param id path int true "Combo id"
// @Success 200 {object} models.EmojiCombo
// @Failure 404 {object} apperror.ErrorResponse
// @Router /emoji-combos/{id} [get]
func (h *ComboHandler) getCombo(w http.ResponseWriter, r *http.Request) {
	id, err := comboID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	combo, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, combo)
}

// createCombo godoc
// @Summary Create an emoji combo
// @Tags EmojiCombos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body combos.CreateRequest true "Combo"
// @Success 201 {object} models.EmojiCombo
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Router /emoji-combos [post]
func (h *ComboHandler) createCombo(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.MustIdentity(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var req CreateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	combo, err := h.service.Create(r.Context(), caller, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, combo)
}

// updateCombo godoc
// @Summary Update an emoji combo
// @Description Owner only. Only the supplied fields change.
// @Tags EmojiCombos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Combo id"
// @Param body body combos.UpdateRequest true "Fields to change"
// @Success 200 {object} models.EmojiCombo
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse "Missing or not owned"
// @Router /emoji-combos/{id} [put]
func (h *ComboHandler) updateCombo(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.MustIdentity(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	id, err := comboID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var req UpdateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	combo, err := h.service.Update(r.Context(), caller, id, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, combo)
}

// deleteCombo godoc
// @Summary Delete an emoji combo
// @Description Owner only; admins may delete any combo.
// @Tags EmojiCombos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Combo id"
// @Success 200 {object} respond.Message
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse "Missing or not owned"
// @Router /emoji-combos/{id} [delete]
func (h *ComboHandler) deleteCombo(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.MustIdentity(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	id, err := comboID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, respond.Message{Message: "Emoji combo deleted successfully"})
}

// listMyCombos godoc
// @Summary List the caller's combos
// @Tags EmojiCombos
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.EmojiCombo
// @Failure 401 {object} apperror.ErrorResponse
// @Router /my-emoji-combos [get]
func (h *ComboHandler) listMyCombos(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.MustIdentity(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	combos, err := h.service.ListMine(r.Context(), caller)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, combos)
}
