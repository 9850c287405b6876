// internal/app/features/groups/routes.go
package groups

import (
	"github.com/corkboardhq/corkboard/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Everything under /groups requires authentication
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// LIST
		pr.Get("/", h.ServeGroupsList)

		// CREATE
		pr.Get("/new", h.ServeNewGroup)
		pr.Post("/", h.HandleCreateGroup)

		// JOIN BY CODE
		pr.Get("/join", h.ServeJoinGroup)
		pr.Post("/join", h.HandleJoinGroup)

		// VIEW
		pr.Get("/{id}", h.ServeGroupView)

		// EDIT
		pr.Get("/{id}/edit", h.ServeEditGroup)
		pr.Post("/{id}/edit", h.HandleEditGroup)

		// MEMBERS
		pr.Get("/{id}/members", h.ServeManageMembers)
		pr.Post("/{id}/members/role", h.HandleChangeRole)
		pr.Post("/{id}/members/remove", h.HandleRemoveMember)

		// LEAVE / DELETE
		pr.Post("/{id}/leave", h.HandleLeaveGroup)
		pr.Post("/{id}/delete", h.HandleDeleteGroup)
	})

	return r
}
