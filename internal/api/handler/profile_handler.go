package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/api/dto"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/backend"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/session"
)

var profileFields = []string{"first_name", "last_name", "phone", "location", "bio"}

// ProfileHandler serves the signed-in user's profile
type ProfileHandler struct {
	base
}

// NewProfileHandler creates a new ProfileHandler instance
func NewProfileHandler(deps *Dependencies) *ProfileHandler {
	return &ProfileHandler{base: newBase(deps)}
}

// GetProfile handles GET /api/v1/profile
// The session copy of the user is refreshed from the API
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	h.logCall(c, "GetProfile")
	sess := CurrentSession(c)
	ctx := c.Request.Context()

	user, err := h.backend.GetProfile(ctx, sess.Token)
	if err != nil {
		h.fail(c, sess, err)
		return
	}

	if sess.Authenticated() && *sess.User != *user {
		h.save(ctx, sess, func(s *session.Session) {
			if s.Authenticated() {
				s.User = user
			}
		})
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "display_name": user.DisplayName()})
}

// UpdateProfile handles PATCH /api/v1/profile
// Only the fields present in the form are changed; profile_picture and
// resume are optional file uploads
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	h.logCall(c, "UpdateProfile")
	sess := CurrentSession(c)
	ctx := c.Request.Context()

	if !sess.Authenticated() {
		h.fail(c, sess, &domain.AuthError{Reason: "no session token for update profile"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	var req dto.ProfileUpdateRequest
	if err := bind(c, &req, binding.Form); err != nil {
		h.fail(c, sess, err)
		return
	}

	update := backend.ProfileUpdate{Fields: make(map[string]string)}
	for _, name := range profileFields {
		if value, ok := c.GetPostForm(name); ok {
			update.Fields[name] = value
		}
	}

	picture, closePicture, err := formUpload(c, "profile_picture")
	if err != nil {
		h.fail(c, sess, err)
		return
	}
	defer closePicture()
	resume, closeResume, err := formUpload(c, "resume")
	if err != nil {
		h.fail(c, sess, err)
		return
	}
	defer closeResume()

	if picture != nil {
		update.ProfilePicture = &backend.Document{Filename: picture.Filename, ContentType: picture.ContentType, Content: picture.Content}
	}
	if resume != nil {
		update.Resume = &backend.Document{Filename: resume.Filename, ContentType: resume.ContentType, Content: resume.Content}
	}

	user, err := h.backend.UpdateProfile(ctx, sess.Token, update)
	if err != nil {
		h.fail(c, sess, err)
		return
	}
	if err := h.sessions.UpdateUser(ctx, sess, *user); err != nil {
		h.fail(c, sess, err)
		return
	}

	h.logger.Info("Profile updated",
		slog.Int("user_id", user.ID),
		slog.Int("fields", len(update.Fields)),
	)
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    user,
	})
}
