package main

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*App, *mux.Router) {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "data.json"), zerolog.Nop())
	require.NoError(t, err)
	views, err := NewViews()
	require.NoError(t, err)

	app := &App{
		store:    store,
		sessions: NewSessionCodec("test-secret", time.Hour),
		views:    views,
		log:      zerolog.Nop(),
	}
	r := mux.NewRouter()
	registerRoutes(r, app)
	return app, r
}

func withSession(t *testing.T, app *App, r *http.Request, s Session) {
	t.Helper()
	value, err := app.sessions.encode(s, time.Now())
	require.NoError(t, err)
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: value})
}

func postForm(path string, form url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func sessionCookieValue(t *testing.T, res *http.Response) string {
	t.Helper()
	for _, c := range res.Cookies() {
		if c.Name == sessionCookieName {
			return c.Value
		}
	}
	return ""
}

func TestAccueilRendersSeedArticle(t *testing.T) {
	_, router := newTestApp(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/accueil", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Article Initial de Bienvenue")
	assert.Contains(t, body, "SuperAdmin")
}

func TestRootServesAccueil(t *testing.T) {
	_, router := newTestApp(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMonCompteRequiresLogin(t *testing.T) {
	_, router := newTestApp(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mon_compte", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/connexion", rec.Header().Get("Location"))
}

func TestAdminPagesRejectMembers(t *testing.T) {
	app, router := newTestApp(t)

	for _, path := range []string{
		"/creer_article",
		"/admin/ajouter_article_shop",
		"/admin/gestion_utilisateurs",
		"/admin/gerer_comptes_admin",
		"/admin/gestion_gemmes",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		withSession(t, app, req, Session{UserID: 2, Grade: GradeMember})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, "/accueil", rec.Header().Get("Location"), path)
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	_, router := newTestApp(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, postForm("/connexion", url.Values{
		"pseudo":       {"SuperAdmin"},
		"mot_de_passe": {"password123"},
	}))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/accueil", rec.Header().Get("Location"))
	assert.NotEmpty(t, sessionCookieValue(t, rec.Result()))
}

func TestLoginRejectsBadPassword(t *testing.T) {
	_, router := newTestApp(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, postForm("/connexion", url.Values{
		"pseudo":       {"SuperAdmin"},
		"mot_de_passe": {"oops"},
	}))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/connexion", rec.Header().Get("Location"))
	assert.Empty(t, sessionCookieValue(t, rec.Result()))
}

func TestLoginRejectsSuspendedAccount(t *testing.T) {
	app, router := newTestApp(t)

	require.NoError(t, app.store.Update(func(doc *Document) error {
		if _, err := RegisterUser(doc, "Alice", "alice@heracraft.fr", "secret"); err != nil {
			return err
		}
		return ChangeStatus(doc, 2, StatusSuspended, "Triche", "", "")
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, postForm("/connexion", url.Values{
		"pseudo":       {"Alice"},
		"mot_de_passe": {"secret"},
	}))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/connexion", rec.Header().Get("Location"))
	assert.Empty(t, sessionCookieValue(t, rec.Result()))
}

func TestInscriptionCreatesMember(t *testing.T) {
	app, router := newTestApp(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, postForm("/inscription", url.Values{
		"pseudo":       {"Bob"},
		"email":        {"bob@heracraft.fr"},
		"mot_de_passe": {"motdepasse"},
	}))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/connexion", rec.Header().Get("Location"))

	require.NoError(t, app.store.View(func(doc *Document) {
		bob := doc.FindUserByPseudo("Bob")
		require.NotNil(t, bob)
		assert.Equal(t, 2, bob.ID)
		assert.Equal(t, GradeMember, bob.Grade)
		assert.Equal(t, 0, bob.Gemmes)
	}))
}

func TestInscriptionRejectsDuplicatePseudo(t *testing.T) {
	app, router := newTestApp(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, postForm("/inscription", url.Values{
		"pseudo":       {"SuperAdmin"},
		"email":        {"new@heracraft.fr"},
		"mot_de_passe": {"x"},
	}))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/inscription", rec.Header().Get("Location"))
	require.NoError(t, app.store.View(func(doc *Document) {
		assert.Len(t, doc.Users, 1)
	}))
}

func TestPurchaseDebitsBalance(t *testing.T) {
	app, router := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/shop/acheter/1", nil)
	withSession(t, app, req, Session{UserID: 1, Grade: GradeAdmin})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/shop", rec.Header().Get("Location"))

	require.NoError(t, app.store.View(func(doc *Document) {
		assert.Equal(t, 450, doc.Users[0].Gemmes, "seed balance 500 minus the 50 gemme key")
	}))
}

func TestPurchaseRequiresLogin(t *testing.T) {
	app, router := newTestApp(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shop/acheter/1", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/connexion", rec.Header().Get("Location"))

	require.NoError(t, app.store.View(func(doc *Document) {
		assert.Equal(t, 500, doc.Users[0].Gemmes)
	}))
}

func TestAdminCannotModerateOwnAccount(t *testing.T) {
	app, router := newTestApp(t)

	req := postForm("/admin/gerer_compte/1", url.Values{"action": {"delete_account"}})
	withSession(t, app, req, Session{UserID: 1, Grade: GradeAdmin})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/gerer_comptes_admin", rec.Header().Get("Location"))

	require.NoError(t, app.store.View(func(doc *Document) {
		assert.NotNil(t, doc.FindUserByID(1), "self deletion must be refused")
	}))
}

func TestAdminDeletesAccountWithArticles(t *testing.T) {
	app, router := newTestApp(t)

	require.NoError(t, app.store.Update(func(doc *Document) error {
		user, err := RegisterUser(doc, "Alice", "alice@heracraft.fr", "secret")
		if err != nil {
			return err
		}
		doc.Articles = append(doc.Articles, Article{
			ID:              doc.NextArticleID(),
			Titre:           "Par Alice",
			AuteurID:        user.ID,
			DatePublication: "2026-02-01 10:00:00",
		})
		return nil
	}))

	req := postForm("/admin/gerer_compte/2", url.Values{"action": {"delete_account"}})
	withSession(t, app, req, Session{UserID: 1, Grade: GradeAdmin})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.NoError(t, app.store.View(func(doc *Document) {
		assert.Nil(t, doc.FindUserByID(2))
		for _, a := range doc.Articles {
			assert.NotEqual(t, 2, a.AuteurID)
		}
	}))
}

func TestAdminGemmeAdjustment(t *testing.T) {
	app, router := newTestApp(t)

	require.NoError(t, app.store.Update(func(doc *Document) error {
		_, err := RegisterUser(doc, "Alice", "alice@heracraft.fr", "secret")
		return err
	}))

	req := postForm("/admin/gerer_gemmes/2", url.Values{
		"action":           {"update_gemmes"},
		"gemmes_amount":    {"120"},
		"gemmes_operation": {"add"},
	})
	withSession(t, app, req, Session{UserID: 1, Grade: GradeAdmin})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.NoError(t, app.store.View(func(doc *Document) {
		assert.Equal(t, 120, doc.FindUserByID(2).Gemmes)
	}))
}

func TestGradeChangeRedirectsToListing(t *testing.T) {
	app, router := newTestApp(t)

	require.NoError(t, app.store.Update(func(doc *Document) error {
		_, err := RegisterUser(doc, "Alice", "alice@heracraft.fr", "secret")
		return err
	}))

	req := postForm("/admin/modifier_utilisateur/2", url.Values{
		"action": {"update_grade"},
		"grade":  {GradeAdmin},
	})
	withSession(t, app, req, Session{UserID: 1, Grade: GradeAdmin})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/gestion_utilisateurs", rec.Header().Get("Location"))

	require.NoError(t, app.store.View(func(doc *Document) {
		assert.Equal(t, GradeAdmin, doc.FindUserByID(2).Grade)
	}))
}

func TestGemmeAmountValidationMessages(t *testing.T) {
	app, router := newTestApp(t)

	require.NoError(t, app.store.Update(func(doc *Document) error {
		_, err := RegisterUser(doc, "Alice", "alice@heracraft.fr", "secret")
		return err
	}))

	cases := []struct {
		amount  string
		message string
	}{
		{"abc", "❌ Le montant des gemmes doit être un nombre entier valide."},
		{"0", "❌ Le montant doit être supérieur à zéro."},
	}
	for _, tc := range cases {
		req := postForm("/admin/gerer_gemmes/2", url.Values{
			"action":           {"update_gemmes"},
			"gemmes_amount":    {tc.amount},
			"gemmes_operation": {"add"},
		})
		withSession(t, app, req, Session{UserID: 1, Grade: GradeAdmin})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusFound, rec.Code, tc.amount)
		notices := app.sessions.pendingFlashes(flashRequest(t, rec.Result()))
		require.NotEmpty(t, notices, tc.amount)
		assert.Equal(t, tc.message, notices[len(notices)-1].Message, tc.amount)

		require.NoError(t, app.store.View(func(doc *Document) {
			assert.Equal(t, 0, doc.FindUserByID(2).Gemmes, "no mutation on rejected amount")
		}))
	}
}

func TestShopPriceValidationMessages(t *testing.T) {
	app, router := newTestApp(t)

	cases := []struct {
		price   string
		message string
	}{
		{"1.5", "❌ Le prix des Gemmes doit être un nombre entier valide."},
		{"-10", "❌ Le prix doit être un nombre entier positif."},
	}
	for _, tc := range cases {
		req := postForm("/admin/ajouter_article_shop", url.Values{
			"nom":         {"Clé Rare"},
			"description": {"Une clé rare."},
			"prix_gemmes": {tc.price},
		})
		withSession(t, app, req, Session{UserID: 1, Grade: GradeAdmin})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusFound, rec.Code, tc.price)
		assert.Equal(t, "/admin/ajouter_article_shop", rec.Header().Get("Location"), tc.price)
		notices := app.sessions.pendingFlashes(flashRequest(t, rec.Result()))
		require.NotEmpty(t, notices, tc.price)
		assert.Equal(t, tc.message, notices[len(notices)-1].Message, tc.price)

		require.NoError(t, app.store.View(func(doc *Document) {
			assert.Len(t, doc.ShopItems, 1, "no item added on rejected price")
		}))
	}
}

func TestUnknownAdminActionFlashesError(t *testing.T) {
	app, router := newTestApp(t)

	require.NoError(t, app.store.Update(func(doc *Document) error {
		_, err := RegisterUser(doc, "Alice", "alice@heracraft.fr", "secret")
		return err
	}))

	req := postForm("/admin/gerer_compte/2", url.Values{"action": {"explode"}})
	withSession(t, app, req, Session{UserID: 1, Grade: GradeAdmin})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/gerer_compte/2", rec.Header().Get("Location"))

	notices := app.sessions.pendingFlashes(flashRequest(t, rec.Result()))
	require.NotEmpty(t, notices)
	assert.Equal(t, flashError, notices[len(notices)-1].Category)
	assert.Equal(t, "❌ Action inconnue.", notices[len(notices)-1].Message)
}

// flashRequest rebuilds a request carrying the flash cookie a response
// just set, as a browser would on the follow-up redirect.
func flashRequest(t *testing.T, res *http.Response) *http.Request {
	t.Helper()
	var value string
	for _, c := range res.Cookies() {
		if c.Name == flashCookieName {
			value = c.Value
		}
	}
	req := httptest.NewRequest(http.MethodGet, "/accueil", nil)
	req.AddCookie(&http.Cookie{Name: flashCookieName, Value: value})
	return req
}
