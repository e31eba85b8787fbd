package users

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/vowbridge-backend/internal/data/repos"
	types "github.com/yungbote/vowbridge-backend/internal/domain"
	domuser "github.com/yungbote/vowbridge-backend/internal/domain/user"
	"github.com/yungbote/vowbridge-backend/internal/platform/apierr"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

type UsecasesDeps struct {
	Log   *logger.Logger
	Users repos.UserRepo
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	deps.Log = deps.Log.With("module", "users")
	return Usecases{deps: deps}
}

// Identity is what the identity provider asserts about the caller.
type Identity struct {
	UserID     uuid.UUID
	Role       string
	Email      string
	GivenName  string
	FamilyName string
}

// EnsureUser upserts the caller from token claims and returns the stored row.
func (u Usecases) EnsureUser(ctx context.Context, id Identity) (*types.User, error) {
	if id.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", nil)
	}
	role := strings.ToLower(strings.TrimSpace(id.Role))
	if !domuser.ValidRole(role) {
		role = domuser.RoleGuest
	}
	row := &types.User{
		ID:        id.UserID,
		FirstName: strings.TrimSpace(id.GivenName),
		LastName:  strings.TrimSpace(id.FamilyName),
		Role:      role,
	}
	if email := strings.ToLower(strings.TrimSpace(id.Email)); email != "" {
		row.Email = &email
	}
	out, err := u.deps.Users.Upsert(dbctx.Context{Ctx: ctx}, row)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "upsert_user_failed", err)
	}
	return out, nil
}
