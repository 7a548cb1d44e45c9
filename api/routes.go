package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) registerIncidentsRoutes(apiRouter chi.Router, h routeHandlers) {
	apiRouter.Route("/incidents", func(incidentsRouter chi.Router) {
		incidentsRouter.MethodFunc(http.MethodGet, "/", h.incidents.List)
		incidentsRouter.MethodFunc(http.MethodPost, "/", h.incidents.Create)
		incidentsRouter.MethodFunc(http.MethodGet, "/{id}", h.incidents.Get)
		incidentsRouter.MethodFunc(http.MethodPut, "/{id}", h.incidents.Update)
		incidentsRouter.MethodFunc(http.MethodDelete, "/{id}", h.incidents.Delete)
		incidentsRouter.MethodFunc(http.MethodPost, "/{id}/artifacts", h.incidents.AddArtifact)
		incidentsRouter.MethodFunc(http.MethodPost, "/{id}/references", h.incidents.AddReference)
		incidentsRouter.MethodFunc(http.MethodPost, "/{id}/files", h.incidents.UploadFile)
		incidentsRouter.MethodFunc(http.MethodGet, "/{id}/files/{filename}", h.incidents.DownloadFile)
		incidentsRouter.MethodFunc(http.MethodDelete, "/{id}/files/{filename}", h.incidents.DeleteFile)
		incidentsRouter.MethodFunc(http.MethodPost, "/{id}/related-tickets", h.incidents.AddRelatedTicket)
		incidentsRouter.MethodFunc(http.MethodDelete, "/{id}/related-tickets/{ticketId}", h.incidents.RemoveRelatedTicket)
	})
}

func (s *Server) registerUsersRoutes(apiRouter chi.Router, h routeHandlers) {
	apiRouter.Route("/users", func(usersRouter chi.Router) {
		usersRouter.MethodFunc(http.MethodGet, "/", h.users.List)
		usersRouter.MethodFunc(http.MethodPost, "/", h.users.Create)
		usersRouter.MethodFunc(http.MethodGet, "/{id}", h.users.Get)
		usersRouter.MethodFunc(http.MethodPut, "/{id}", h.users.Update)
		usersRouter.MethodFunc(http.MethodDelete, "/{id}", h.users.Delete)
	})
}

func (s *Server) registerPlaybooksRoutes(apiRouter chi.Router, h routeHandlers) {
	apiRouter.Route("/playbooks", func(playbooksRouter chi.Router) {
		playbooksRouter.MethodFunc(http.MethodGet, "/", h.playbooks.List)
		playbooksRouter.MethodFunc(http.MethodPost, "/", h.playbooks.Create)
		// Registered before /{id} so "diagrams" never resolves as one.
		playbooksRouter.MethodFunc(http.MethodGet, "/diagrams/{filename}", h.playbooks.ServeDiagram)
		playbooksRouter.MethodFunc(http.MethodGet, "/{id}", h.playbooks.Get)
		playbooksRouter.MethodFunc(http.MethodPut, "/{id}", h.playbooks.Update)
		playbooksRouter.MethodFunc(http.MethodDelete, "/{id}", h.playbooks.Delete)
		playbooksRouter.MethodFunc(http.MethodPost, "/{id}/upload-diagram", h.playbooks.UploadDiagram)
		playbooksRouter.MethodFunc(http.MethodDelete, "/{id}/diagram", h.playbooks.DeleteDiagram)
	})
}

func (s *Server) registerArtifactsRoutes(apiRouter chi.Router, h routeHandlers) {
	apiRouter.Route("/artifacts", func(artifactsRouter chi.Router) {
		artifactsRouter.MethodFunc(http.MethodGet, "/{id}", h.artifacts.Get)
		artifactsRouter.MethodFunc(http.MethodPut, "/{id}", h.artifacts.Update)
		artifactsRouter.MethodFunc(http.MethodDelete, "/{id}", h.artifacts.Delete)
	})
}

func (s *Server) registerReferencesRoutes(apiRouter chi.Router, h routeHandlers) {
	apiRouter.Route("/references", func(referencesRouter chi.Router) {
		referencesRouter.MethodFunc(http.MethodGet, "/{id}", h.references.Get)
		referencesRouter.MethodFunc(http.MethodPut, "/{id}", h.references.Update)
		referencesRouter.MethodFunc(http.MethodDelete, "/{id}", h.references.Delete)
	})
}
