package main

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// Route guards. A failed check flashes an error notice and redirects
// without executing the handler, so no guarded action ever runs for an
// unauthorized caller.

// requireUser rejects anonymous callers and sends them to the login page.
func requireUser(app *App, w http.ResponseWriter, r *http.Request, denied string) (*Session, bool) {
	session := app.sessions.ReadSession(r)
	if session == nil {
		app.sessions.Flash(w, r, flashError, denied)
		http.Redirect(w, r, "/connexion", http.StatusFound)
		return nil, false
	}
	return session, true
}

// requireAdmin rejects anyone who is not an Administrateur and sends
// them back to the public landing page.
func requireAdmin(app *App, w http.ResponseWriter, r *http.Request, denied string) (*Session, bool) {
	session := app.sessions.ReadSession(r)
	if !session.IsAdmin() {
		app.sessions.Flash(w, r, flashError, denied)
		http.Redirect(w, r, "/accueil", http.StatusFound)
		return nil, false
	}
	return session, true
}

// rejectSelfTarget blocks admin-moderation actions aimed at the
// caller's own account and returns to the listing page.
func rejectSelfTarget(app *App, w http.ResponseWriter, r *http.Request, session *Session, targetID int, denied string, listURL string) bool {
	if session.UserID == targetID {
		app.sessions.Flash(w, r, flashError, denied)
		http.Redirect(w, r, listURL, http.StatusFound)
		return false
	}
	return true
}

// pathID extracts a numeric path variable set by the router.
func pathID(r *http.Request, name string) (int, bool) {
	raw, ok := mux.Vars(r)[name]
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}
