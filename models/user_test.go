package models_test

import (
	"testing"

	"eshop/models"

	"github.com/stretchr/testify/assert"
)

func TestUserInitials(t *testing.T) {
	tests := []struct {
		name string
		user models.User
		want string
	}{
		{"full name", models.User{FirstName: "ada", LastName: "Lovelace"}, "AL"},
		{"first name only", models.User{FirstName: " grace "}, "G"},
		{"falls back to email", models.User{Email: "zoe@shop.test"}, "Z"},
		{"non-ascii", models.User{FirstName: "élodie", LastName: "Öberg"}, "ÉÖ"},
		{"empty", models.User{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.Initials())
		})
	}
}

func TestUserIsAdmin(t *testing.T) {
	assert.True(t, (&models.User{Role: models.RoleAdmin}).IsAdmin())
	assert.False(t, (&models.User{Role: models.RoleUser}).IsAdmin())
	assert.False(t, (&models.User{}).IsAdmin())
}
