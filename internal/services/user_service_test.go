package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/eco_report/internal/models"
	"github.com/eco_report/internal/repositories"
)

func TestGetProfileVisibility(t *testing.T) {
	db := openTestDB(t, "user_visibility")
	service := NewUserService(repositories.NewGormUserRepository(db))
	createTestUser(t, db, &models.User{ID: "hidden1", ProfileVisible: boolPtr(false)})

	// A hidden profile reads as missing to strangers and anonymous callers.
	if _, err := service.GetProfile(context.Background(), "stranger", string(models.UserRoleMember), "hidden1"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("stranger: expected ErrUserNotFound, got %v", err)
	}
	if _, err := service.GetProfile(context.Background(), "", "", "hidden1"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("anonymous: expected ErrUserNotFound, got %v", err)
	}

	if _, err := service.GetProfile(context.Background(), "hidden1", string(models.UserRoleMember), "hidden1"); err != nil {
		t.Errorf("owner: expected access to own hidden profile, got %v", err)
	}
	if _, err := service.GetProfile(context.Background(), "mod1", string(models.UserRoleAdmin), "hidden1"); err != nil {
		t.Errorf("admin: expected access to hidden profile, got %v", err)
	}
}

func TestGetProfileUnknownUser(t *testing.T) {
	db := openTestDB(t, "user_unknown")
	service := NewUserService(repositories.NewGormUserRepository(db))

	if _, err := service.GetProfile(context.Background(), "u1", string(models.UserRoleMember), "nope"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserOptOutsSurviveCreation(t *testing.T) {
	db := openTestDB(t, "user_optout_create")

	// Preferences that default to true must still be storable as false on the
	// initial insert, not just via a later update.
	createTestUser(t, db, &models.User{
		ID:             "u1",
		ProfileVisible: boolPtr(false),
		NotifyVerified: boolPtr(false),
	})

	var stored models.User
	if err := db.First(&stored, "id = ?", "u1").Error; err != nil {
		t.Fatalf("reloading user: %v", err)
	}
	if stored.ProfileIsVisible() {
		t.Error("ProfileVisible=false was lost on insert")
	}
	if stored.WantsVerifiedEmail() {
		t.Error("NotifyVerified=false was lost on insert")
	}

	// And the defaults still apply when the fields are left unset.
	createTestUser(t, db, &models.User{ID: "u2"})
	var fresh models.User
	if err := db.First(&fresh, "id = ?", "u2").Error; err != nil {
		t.Fatalf("reloading user: %v", err)
	}
	if !fresh.ProfileIsVisible() || !fresh.WantsVerifiedEmail() {
		t.Error("unset preferences should land on the column defaults (true)")
	}
}

func TestUpdateProfileBioLimit(t *testing.T) {
	db := openTestDB(t, "user_bio")
	service := NewUserService(repositories.NewGormUserRepository(db))
	createTestUser(t, db, &models.User{ID: "u1"})

	tooLong := strings.Repeat("x", models.MaxBioLength+1)
	if _, err := service.UpdateProfile(context.Background(), "u1", UpdateProfileInput{Bio: &tooLong}); !errors.Is(err, ErrBioTooLong) {
		t.Fatalf("expected ErrBioTooLong, got %v", err)
	}

	// The limit counts characters, not bytes.
	exactRunes := strings.Repeat("ü", models.MaxBioLength)
	user, err := service.UpdateProfile(context.Background(), "u1", UpdateProfileInput{Bio: &exactRunes})
	if err != nil {
		t.Fatalf("a bio of exactly %d characters must be accepted: %v", models.MaxBioLength, err)
	}
	if user.Bio != exactRunes {
		t.Error("bio was not persisted")
	}
}

func TestUpdateProfileFields(t *testing.T) {
	db := openTestDB(t, "user_update")
	service := NewUserService(repositories.NewGormUserRepository(db))
	createTestUser(t, db, &models.User{ID: "u1", Bio: "original", NotifyVerified: boolPtr(true)})

	bad := "not-an-email"
	if _, err := service.UpdateProfile(context.Background(), "u1", UpdateProfileInput{Email: &bad}); !errors.Is(err, ErrInvalidProfileInput) {
		t.Fatalf("expected ErrInvalidProfileInput, got %v", err)
	}

	email := "u1@example.com"
	username := "  cleanup-crew  "
	visible := false
	notify := false
	user, err := service.UpdateProfile(context.Background(), "u1", UpdateProfileInput{
		Email:          &email,
		Username:       &username,
		ProfileVisible: &visible,
		NotifyVerified: &notify,
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if user.Username == nil || *user.Username != "cleanup-crew" {
		t.Errorf("expected trimmed username, got %v", user.Username)
	}
	if user.Email == nil || *user.Email != email {
		t.Errorf("expected email %s, got %v", email, user.Email)
	}
	if user.ProfileIsVisible() || user.WantsVerifiedEmail() {
		t.Error("expected visibility and notification opt-outs to stick")
	}
	if user.Bio != "original" {
		t.Errorf("omitted fields must stay unchanged, bio became %q", user.Bio)
	}
}
