// internal/app/features/announcements/routes.go
package announcements

import (
	"github.com/corkboardhq/corkboard/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /groups/{id}/announcements; the {id} group parameter
// comes from the mount pattern.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// BOARD
		pr.Get("/", h.ServeBoard)

		// CREATE
		pr.Get("/new", h.ServeNewAnnouncement)
		pr.Post("/", h.HandleCreateAnnouncement)

		// SINGLE POST
		pr.Get("/{annID}", h.ServeAnnouncement)
		pr.Get("/{annID}/edit", h.ServeEditAnnouncement)
		pr.Post("/{annID}/edit", h.HandleEditAnnouncement)
		pr.Post("/{annID}/delete", h.HandleDeleteAnnouncement)
		pr.Post("/{annID}/pin", h.HandlePinToggle)

		// VOTES
		pr.Post("/{annID}/vote", h.HandleVote)
		pr.Post("/{annID}/unvote", h.HandleUnvote)

		// ATTACHMENTS
		pr.Get("/{annID}/attachments/{idx}", h.ServeAttachment)
	})

	return r
}
