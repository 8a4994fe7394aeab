package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rjtc/pms-sync/internal/core/ports"
)

type MemberHandler struct {
	members ports.MemberService
}

func NewMemberHandler(members ports.MemberService) *MemberHandler {
	return &MemberHandler{members: members}
}

type memberResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photo_url"`
	// ProfileImage is the downloaded avatar, base64 in JSON. Empty when the
	// download failed; the client falls back to PhotoURL.
	ProfileImage []byte `json:"profile_image,omitempty"`
}

// Get resolves one project member. A profile record missing any identity
// field is an error; a failed avatar download is not.
func (h *MemberHandler) Get(c echo.Context) error {
	member, err := h.members.GetMember(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, memberResponse{
		ID:           member.ID,
		Email:        member.Email,
		Name:         member.Name,
		PhotoURL:     member.PhotoURL,
		ProfileImage: member.ProfileImage,
	})
}
