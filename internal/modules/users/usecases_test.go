package users

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/vowbridge-backend/internal/data/repos"
	"github.com/yungbote/vowbridge-backend/internal/data/repos/testutil"
	domuser "github.com/yungbote/vowbridge-backend/internal/domain/user"
	"github.com/yungbote/vowbridge-backend/internal/platform/apierr"
)

func TestEnsureUserUpsertsFromClaims(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	uc := New(UsecasesDeps{Log: log, Users: repos.NewUserRepo(db, log)})
	ctx := context.Background()
	id := uuid.New()

	u, err := uc.EnsureUser(ctx, Identity{UserID: id, Role: "Celebrant", Email: "Ana@Example.com", GivenName: "Ana"})
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	if u.Role != domuser.RoleCelebrant || u.Email == nil || *u.Email != "ana@example.com" {
		t.Fatalf("unexpected user: %+v", u)
	}

	u, err = uc.EnsureUser(ctx, Identity{UserID: id, Role: "wizard", Email: "ana@example.com", GivenName: "Ana", FamilyName: "Reyes"})
	if err != nil {
		t.Fatalf("EnsureUser(again): %v", err)
	}
	if u.LastName != "Reyes" || u.Role != domuser.RoleGuest {
		t.Fatalf("profile not refreshed: %+v", u)
	}

	_, err = uc.EnsureUser(ctx, Identity{})
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
