package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/dto"
	"github.com/ecopulse/ecopulse-backend/internal/http/handlers/common"
	"github.com/ecopulse/ecopulse-backend/internal/http/response"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
	"github.com/ecopulse/ecopulse-backend/internal/usecase/user"
	"github.com/ecopulse/ecopulse-backend/internal/validation"
)

// UserHandler - профили, рейтинг и управление пользователями.
type UserHandler struct {
	profile *user.GetProfileUseCase
	update  *user.UpdateProfileUseCase
	rating  user.RatingLoader
	list    *user.ListUsersUseCase
	toggle  *user.ToggleRoleUseCase
	photos  PhotoStore
}

func NewUserHandler(
	profile *user.GetProfileUseCase,
	update *user.UpdateProfileUseCase,
	rating user.RatingLoader,
	list *user.ListUsersUseCase,
	toggle *user.ToggleRoleUseCase,
	photos PhotoStore,
) *UserHandler {
	return &UserHandler{profile: profile, update: update, rating: rating, list: list, toggle: toggle, photos: photos}
}

// Me обрабатывает GET /api/users/me.
func (h *UserHandler) Me(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	u, rank, err := h.profile.WithRank(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	resp := dto.NewUserResponse(u, true)
	resp.Rank = rank
	response.Success(c, "", gin.H{"user": resp})
}

// Get обрабатывает GET /api/users/:id. Email и реферальный код видны владельцу и администратору.
func (h *UserHandler) Get(c *gin.Context) {
	viewerID, targetID, ok := actorAndID(c)
	if !ok {
		return
	}

	u, err := h.profile.Execute(c.Request.Context(), targetID)
	if err != nil {
		response.Error(c, err)
		return
	}
	private := viewerID == targetID || common.CurrentUserRole(c) == entity.RoleAdmin
	response.Success(c, "", gin.H{"user": dto.NewUserResponse(u, private)})
}

// UpdateMe обрабатывает PATCH /api/users/me. Аватар передаётся в поле avatar формы.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateProfileRequest
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if city, ok := c.GetPostForm("city"); ok {
			req.City = &city
		}
		if lang, ok := c.GetPostForm("language"); ok {
			req.Language = &lang
		}
	} else if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if req.City != nil {
		if err := validation.ValidateCity(*req.City); err != nil {
			response.Error(c, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error()))
			return
		}
	}

	saved := &savedPhotos{store: h.photos}
	avatar, err := saved.save(c, userID, "avatar")
	if err != nil {
		response.Error(c, err)
		return
	}

	var previous *string
	if avatar != nil {
		if current, err := h.profile.Execute(c.Request.Context(), userID); err == nil {
			previous = current.Avatar
		}
	}

	u, err := h.update.Execute(c.Request.Context(), userID, user.UpdateProfileInput{
		City:     req.City,
		Language: req.Language,
		Avatar:   avatar,
	})
	if err != nil {
		saved.rollback(c.Request.Context())
		response.Error(c, err)
		return
	}
	if avatar != nil {
		removePhoto(c.Request.Context(), h.photos, previous)
	}

	response.Success(c, "профиль обновлён", gin.H{"user": dto.NewUserResponse(u, true)})
}

// Rating обрабатывает GET /api/rating.
func (h *UserHandler) Rating(c *gin.Context) {
	rows, err := h.rating.Rating(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", gin.H{"rating": rows})
}

// List обрабатывает GET /api/admin/users.
func (h *UserHandler) List(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit, offset := common.GetPagination(c)
	users, total, err := h.list.Execute(c.Request.Context(), adminID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", gin.H{"users": dto.NewUserList(users), "total": total, "limit": limit, "offset": offset})
}

// ToggleAdmin обрабатывает POST /api/admin/users/:id/toggle_admin.
func (h *UserHandler) ToggleAdmin(c *gin.Context) {
	h.toggleRole(c, user.RoleAdmin)
}

// ToggleWorker обрабатывает POST /api/admin/users/:id/toggle_worker.
func (h *UserHandler) ToggleWorker(c *gin.Context) {
	h.toggleRole(c, user.RoleWorker)
}

func (h *UserHandler) toggleRole(c *gin.Context, role user.Role) {
	adminID, targetID, ok := actorAndID(c)
	if !ok {
		return
	}

	u, err := h.toggle.Execute(c.Request.Context(), adminID, targetID, role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "права обновлены", gin.H{
		"user_id":   u.ID,
		"is_admin":  u.IsAdmin,
		"is_worker": u.IsWorker,
	})
}
