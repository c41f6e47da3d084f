package service

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/admin-service/internal/domain"
	apperrors "github.com/spec-kit/admin-service/pkg/util"
)

func newTestUserService() (*UserService, *fakeUserRepo) {
	users := newFakeUserRepo()
	return NewUserService(testConfig(), users, nil), users
}

func seedAdmin(t *testing.T, svc *UserService) *domain.User {
	t.Helper()
	admin, err := svc.Create(context.Background(), "", "Root", "root@example.com", "hunter22", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return admin
}

func TestUserService_CreateValidatesRole(t *testing.T) {
	svc, _ := newTestUserService()

	if _, err := svc.Create(context.Background(), "", "X", "x@example.com", "pw", domain.Role("root")); err == nil {
		t.Fatal("unknown role should be rejected")
	}
	if _, err := svc.Create(context.Background(), "", "X", "x@example.com", "pw", domain.RoleUser); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(context.Background(), "", "Y", "x@example.com", "pw", domain.RoleUser); err == nil {
		t.Fatal("duplicate email should be rejected")
	}
}

func TestUserService_ErrorCodes(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	_, badRole := svc.Create(ctx, "", "X", "x@example.com", "pw", domain.Role("root"))
	var domainErr *apperrors.DomainError
	if !errors.As(badRole, &domainErr) || domainErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("unknown role error = %v, want VALIDATION_FAILED", badRole)
	}

	if _, err := svc.Create(ctx, "", "X", "x@example.com", "pw", domain.RoleUser); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, dup := svc.Create(ctx, "", "Y", "x@example.com", "pw", domain.RoleUser)
	if !errors.As(dup, &domainErr) || domainErr.Code != "CONFLICT" || domainErr.HTTPStatus != 409 {
		t.Fatalf("duplicate email error = %v, want CONFLICT/409", dup)
	}
}

func TestUserService_ChangeRole(t *testing.T) {
	svc, users := newTestUserService()
	ctx := context.Background()
	admin := seedAdmin(t, svc)
	target, err := svc.Create(ctx, admin.ID, "Ada", "ada@example.com", "pw", domain.RoleUser)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.ChangeRole(ctx, admin.ID, target.ID, domain.RoleAdmin); err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}
	if users.users[target.ID].Role != domain.RoleAdmin {
		t.Fatal("role not persisted")
	}

	if err := svc.ChangeRole(ctx, admin.ID, admin.ID, domain.RoleUser); err == nil {
		t.Fatal("self-demotion should be rejected")
	}
	if err := svc.ChangeRole(ctx, admin.ID, target.ID, domain.Role("root")); err == nil {
		t.Fatal("unknown role should be rejected")
	}
}

func TestUserService_ActivationGuards(t *testing.T) {
	svc, users := newTestUserService()
	ctx := context.Background()
	admin := seedAdmin(t, svc)
	target, err := svc.Create(ctx, admin.ID, "Ada", "ada@example.com", "pw", domain.RoleUser)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.SetActive(ctx, admin.ID, target.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if users.users[target.ID].IsActive {
		t.Fatal("deactivation not persisted")
	}
	if err := svc.SetActive(ctx, admin.ID, target.ID, true); err != nil {
		t.Fatalf("reactivate: %v", err)
	}

	if err := svc.SetActive(ctx, admin.ID, admin.ID, false); err == nil {
		t.Fatal("self-deactivation should be rejected")
	}
}

func TestUserService_DeleteGuardsSelf(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()
	admin := seedAdmin(t, svc)
	target, err := svc.Create(ctx, admin.ID, "Ada", "ada@example.com", "pw", domain.RoleUser)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, admin.ID, admin.ID); err == nil {
		t.Fatal("self-deletion should be rejected")
	}
	if err := svc.Delete(ctx, admin.ID, target.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, target.ID); err == nil {
		t.Fatal("deleted account still readable")
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()
	admin := seedAdmin(t, svc)
	target, err := svc.Create(ctx, admin.ID, "Ada", "ada@example.com", "pw", domain.RoleUser)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newName := "Ada L."
	updated, err := svc.UpdateProfile(ctx, admin.ID, target.ID, &newName, nil)
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Name != newName {
		t.Fatalf("name = %q, want %q", updated.Name, newName)
	}

	taken := "root@example.com"
	if _, err := svc.UpdateProfile(ctx, admin.ID, target.ID, nil, &taken); err == nil {
		t.Fatal("email collision should be rejected")
	}
}

func TestUserService_ListClampsLimit(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()
	admin := seedAdmin(t, svc)

	users, total, err := svc.List(ctx, -5, -1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(users) != 1 || users[0].ID != admin.ID {
		t.Fatalf("List = %d users, total %d", len(users), total)
	}
}
