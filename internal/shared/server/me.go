package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-parser/internal/shared/server/middleware"
	"resume-parser/internal/shared/server/respond"
	"resume-parser/internal/shared/util"
)

type meResponse struct {
	UserID   string `json:"userId"`
	IsGuest  bool   `json:"isGuest"`
	OwnerKey string `json:"ownerKey"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Picture  string `json:"picture,omitempty"`
}

// meHandler describes the caller. ownerKey is the segment under which the
// caller's uploaded files are stored.
func meHandler(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}

	respond.OK(c, meResponse{
		UserID:   userID,
		IsGuest:  c.GetBool("isGuest"),
		OwnerKey: util.OwnerKey(userID),
		Email:    middleware.UserEmailFromContext(c),
		Name:     middleware.UserNameFromContext(c),
		Picture:  middleware.UserPictureFromContext(c),
	})
}
