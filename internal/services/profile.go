package services

import (
	"strings"

	"github.com/locm1/nippo/internal/models"
)

// AnonymousLabel is the display-name fallback when a user has neither an
// explicit name nor a usable email.
const AnonymousLabel = "匿名"

// DisplayName is the single source of truth for rendering a user. Precedence:
// explicit name, then email local-part, then the anonymous label. Total
// function: never returns an empty string.
func DisplayName(user *models.User) string {
	if user == nil {
		return AnonymousLabel
	}
	if name := strings.TrimSpace(user.Name); name != "" {
		return name
	}
	if at := strings.Index(user.Email, "@"); at > 0 {
		return user.Email[:at]
	}
	return AnonymousLabel
}
