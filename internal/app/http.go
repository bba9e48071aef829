package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chatcore/pkg/logger"
	"chatcore/pkg/store"
	"chatcore/pkg/utils"
)

// routes builds the read-only inspection surface. Nothing here mutates
// the engine; the UI collaborator drives mutations through the Go API.
func (a *App) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.LogRequest(req)
			next.ServeHTTP(w, req)
		})
	})

	r.HandleFunc("/healthz", a.healthzHandler).Methods(http.MethodGet)
	r.HandleFunc("/readyz", a.readyzHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/v1/chats", a.chatsHandler).Methods(http.MethodGet)
	r.HandleFunc("/v1/chats/{id}/messages", a.messagesHandler).Methods(http.MethodGet)
	r.HandleFunc("/v1/contacts", a.contactsHandler).Methods(http.MethodGet)
	return r
}

func (a *App) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"status": "ok", "version": a.version})
}

func (a *App) readyzHandler(w http.ResponseWriter, _ *http.Request) {
	if !store.Ready() {
		utils.JSONError(w, http.StatusServiceUnavailable, "snapshot store not ready")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (a *App) chatsHandler(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"active":                a.eng.ActiveChats(),
		"archived":              a.eng.ArchivedChats(),
		"archived_unread_badge": a.eng.ArchivedUnreadBadge(),
	}
	_ = utils.JSONWrite(w, http.StatusOK, resp)
}

func (a *App) messagesHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := a.eng.Chat(id); !ok {
		utils.JSONError(w, http.StatusNotFound, "chat not found")
		return
	}
	resp := map[string]any{
		"messages": a.eng.ChatLog(id),
		"typing":   a.eng.TypingUsers(id),
	}
	_ = utils.JSONWrite(w, http.StatusOK, resp)
}

func (a *App) contactsHandler(w http.ResponseWriter, _ *http.Request) {
	_ = utils.JSONWrite(w, http.StatusOK, a.eng.AvailableContacts())
}
