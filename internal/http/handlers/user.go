package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/vowbridge-backend/internal/http/response"
	usersmod "github.com/yungbote/vowbridge-backend/internal/modules/users"
	"github.com/yungbote/vowbridge-backend/internal/platform/ctxutil"
)

type UserHandler struct {
	users usersmod.Usecases
}

func NewUserHandler(users usersmod.Usecases) *UserHandler {
	return &UserHandler{users: users}
}

// GET /api/auth/user
func (h *UserHandler) GetAuthUser(c *gin.Context) {
	if _, ok := requireCaller(c); !ok {
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	u, err := h.users.EnsureUser(c.Request.Context(), usersmod.Identity{
		UserID:     rd.UserID,
		Role:       rd.Role,
		Email:      rd.Email,
		GivenName:  rd.GivenName,
		FamilyName: rd.FamilyName,
	})
	if err != nil {
		respondErr(c, err, "load_user_failed")
		return
	}
	response.RespondOK(c, u)
}
