package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsValidator_ValidateEmail(t *testing.T) {
	validator := NewCredentialsValidator()

	tests := []struct {
		name        string
		email       string
		wantErr     bool
		expectedErr string
	}{
		{name: "valid", email: "student@example.com"},
		{name: "valid with plus", email: "student+notes@uni.edu"},
		{name: "empty", email: "", wantErr: true, expectedErr: "email is required"},
		{name: "no at", email: "student.example.com", wantErr: true, expectedErr: "email is not valid"},
		{name: "display name", email: "Student <student@example.com>", wantErr: true, expectedErr: "email is not valid"},
		{name: "no tld", email: "student@localhost", wantErr: true, expectedErr: "email domain is not valid"},
		{name: "too long", email: strings.Repeat("a", 250) + "@x.io", wantErr: true, expectedErr: "at most"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateEmail(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCredentialsValidator_ValidatePassword(t *testing.T) {
	validator := NewCredentialsValidator()

	tests := []struct {
		name        string
		password    string
		wantErr     bool
		expectedErr string
	}{
		{name: "valid", password: "studying1"},
		{name: "unicode letters", password: "пароль123"},
		{name: "too short", password: "abc123", wantErr: true, expectedErr: "at least 8 characters"},
		{name: "no digit", password: "abcdefgh", wantErr: true, expectedErr: "at least one digit"},
		{name: "no letter", password: "12345678", wantErr: true, expectedErr: "at least one letter"},
		{name: "too long", password: strings.Repeat("a1", 40), wantErr: true, expectedErr: "at most 72 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidatePassword(tt.password)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCredentialsValidator_ValidateRegister(t *testing.T) {
	validator := NewCredentialsValidator()

	err := validator.ValidateRegister("bad", "studying1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email validation failed")

	err = validator.ValidateRegister("a@b.co", "short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password validation failed")

	assert.NoError(t, validator.ValidateRegister("a@b.co", "longenough1"))
}
