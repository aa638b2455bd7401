package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eventify/eventify/internal/auth"
	"github.com/eventify/eventify/internal/model"
)

func TestRegisterValidation(t *testing.T) {
	svc := &UserService{adminSecret: "top-secret"}

	tests := []struct {
		name string
		req  model.RegisterRequest
		want error
	}{
		{
			"missing username",
			model.RegisterRequest{Email: "a@example.com", Password: "longenough"},
			nil,
		},
		{
			"invalid email",
			model.RegisterRequest{Username: "alice", Email: "not-an-email", Password: "longenough"},
			nil,
		},
		{
			"unknown role",
			model.RegisterRequest{Username: "alice", Email: "a@example.com", Password: "longenough", Role: "superuser"},
			nil,
		},
		{
			"admin without secret",
			model.RegisterRequest{Username: "alice", Email: "a@example.com", Password: "longenough", Role: model.RoleAdmin},
			ErrAdminSecret,
		},
		{
			"admin with wrong secret",
			model.RegisterRequest{Username: "alice", Email: "a@example.com", Password: "longenough", Role: model.RoleAdmin, AdminSecret: "guess"},
			ErrAdminSecret,
		},
		{
			"short password",
			model.RegisterRequest{Username: "alice", Email: "a@example.com", Password: "short"},
			auth.ErrPasswordTooShort,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRegisterAdminSecretDisabled(t *testing.T) {
	// An empty configured secret disables admin registration entirely.
	svc := &UserService{adminSecret: ""}

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Username:    "alice",
		Email:       "a@example.com",
		Password:    "longenough",
		Role:        model.RoleAdmin,
		AdminSecret: "",
	})
	assert.ErrorIs(t, err, ErrAdminSecret)
}

func TestUpdateProfileValidation(t *testing.T) {
	svc := &UserService{}
	empty := "   "
	badEmail := "nope"

	_, err := svc.UpdateProfile(context.Background(), "u-1", model.UpdateProfileRequest{Username: &empty})
	assert.ErrorContains(t, err, "username cannot be empty")

	_, err = svc.UpdateProfile(context.Background(), "u-1", model.UpdateProfileRequest{Email: &badEmail})
	assert.ErrorContains(t, err, "not a valid email")
}

func TestResetPasswordTooShort(t *testing.T) {
	svc := &UserService{}

	err := svc.ResetPassword(context.Background(), "some-token", "short")
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@example.com", "first.last@sub.domain.org"}
	invalid := []string{"", "plain", "no-at.example.com", "two@@example.com", "@example.com", "user@nodot"}

	for _, e := range valid {
		assert.True(t, isValidEmail(e), e)
	}
	for _, e := range invalid {
		assert.False(t, isValidEmail(e), e)
	}
}
