package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/locm1/nippo/internal/models"
)

func TestDisplayName(t *testing.T) {
	cases := []struct {
		name string
		user *models.User
		want string
	}{
		{"nil user", nil, "匿名"},
		{"explicit name wins", &models.User{Name: "太郎", Email: "taro@example.com"}, "太郎"},
		{"name is trimmed", &models.User{Name: "  太郎  "}, "太郎"},
		{"email local-part", &models.User{Email: "hanako@example.com"}, "hanako"},
		{"whitespace name falls through", &models.User{Name: "   ", Email: "hanako@example.com"}, "hanako"},
		{"email without local-part", &models.User{Email: "@example.com"}, "匿名"},
		{"no usable identity", &models.User{}, "匿名"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DisplayName(tc.user))
		})
	}
}
