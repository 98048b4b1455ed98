package main

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"
)

/* ============================================================
   CONTENT PUBLISHING (admin)
   ============================================================ */

func creerArticleHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := requireAdmin(app, w, r, "⛔ Accès refusé. Seuls les Admins peuvent créer des articles.")
		if !ok {
			return
		}
		if r.Method != http.MethodPost {
			app.render(w, r, "creer_article", pageData{Title: "Créer un Article"})
			return
		}

		titre := r.FormValue("titre")
		contenu := r.FormValue("contenu")

		err := app.store.Update(func(doc *Document) error {
			doc.Articles = append(doc.Articles, Article{
				ID:              doc.NextArticleID(),
				Titre:           titre,
				Contenu:         contenu,
				AuteurID:        session.UserID,
				DatePublication: time.Now().Format(dateFormat),
			})
			return nil
		})
		if err != nil {
			app.log.Error().Err(err).Msg("article creation failed")
			flashPersistenceFailure(app, w, r)
			http.Redirect(w, r, "/creer_article", http.StatusFound)
			return
		}

		app.sessions.Flash(w, r, flashSuccess, "✅ Article créé et publié !")
		http.Redirect(w, r, "/accueil", http.StatusFound)
	}
}

func ajouterArticleShopHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, ok := requireAdmin(app, w, r, "⛔ Accès refusé. Seuls les Administrateurs peuvent ajouter des articles au shop.")
		if !ok {
			return
		}
		if r.Method != http.MethodPost {
			app.render(w, r, "ajouter_article_shop", pageData{Title: "Ajouter un Article au Shop"})
			return
		}

		nom := r.FormValue("nom")
		description := r.FormValue("description")
		prix, err := parsePositiveInt(r.FormValue("prix_gemmes"))
		if err != nil {
			if errors.Is(err, errNotAnInteger) {
				app.sessions.Flash(w, r, flashError, "❌ Le prix des Gemmes doit être un nombre entier valide.")
			} else {
				app.sessions.Flash(w, r, flashError, "❌ Le prix doit être un nombre entier positif.")
			}
			http.Redirect(w, r, "/admin/ajouter_article_shop", http.StatusFound)
			return
		}

		err = app.store.Update(func(doc *Document) error {
			doc.ShopItems = append(doc.ShopItems, ShopItem{
				ID:          doc.NextShopItemID(),
				Nom:         nom,
				Description: description,
				PrixGemmes:  prix,
				DateAjout:   time.Now().Format(dateFormat),
			})
			return nil
		})
		if err != nil {
			app.log.Error().Err(err).Msg("shop item creation failed")
			flashPersistenceFailure(app, w, r)
			http.Redirect(w, r, "/admin/ajouter_article_shop", http.StatusFound)
			return
		}

		app.sessions.Flash(w, r, flashSuccess, fmt.Sprintf("✅ Article %s ajouté à la boutique pour %d 💎.", nom, prix))
		http.Redirect(w, r, "/shop", http.StatusFound)
	}
}

/* ============================================================
   USER MODERATION (admin)
   ============================================================ */

// listUsers snapshots the user table sorted by id. When excludeID is
// non-zero that account is left out (the grade/password page must not
// offer the caller their own account).
func listUsers(app *App, excludeID int) []User {
	var users []User
	_ = app.store.View(func(doc *Document) {
		for _, u := range doc.Users {
			if u.ID == excludeID {
				continue
			}
			users = append(users, u)
		}
	})
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

// loadUser snapshots one account for a detail page.
func loadUser(app *App, userID int) *User {
	var user *User
	_ = app.store.View(func(doc *Document) {
		if u := doc.FindUserByID(userID); u != nil {
			copied := *u
			user = &copied
		}
	})
	return user
}

func gestionUtilisateursHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := requireAdmin(app, w, r, "⛔ Accès refusé. Seuls les Administrateurs peuvent gérer les utilisateurs.")
		if !ok {
			return
		}
		app.render(w, r, "gestion_utilisateurs", pageData{
			Title: "Gestion des Utilisateurs",
			Users: listUsers(app, session.UserID),
		})
	}
}

func modifierUtilisateurHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := requireAdmin(app, w, r, "⛔ Accès refusé. Seuls les Administrateurs peuvent modifier les grades.")
		if !ok {
			return
		}
		userID, found := pathID(r, "userId")
		target := loadUser(app, userID)
		if !found || target == nil || userID == session.UserID {
			app.sessions.Flash(w, r, flashError, "❌ Utilisateur non trouvé ou vous ne pouvez pas modifier votre propre grade/mdp via cette page.")
			http.Redirect(w, r, "/admin/gestion_utilisateurs", http.StatusFound)
			return
		}

		if r.Method != http.MethodPost {
			app.render(w, r, "modifier_utilisateur", pageData{Title: "Modifier " + target.Pseudo, User: target})
			return
		}

		switch r.FormValue("action") {
		case "update_grade":
			grade := r.FormValue("grade")
			err := app.store.Update(func(doc *Document) error {
				return ChangeGrade(doc, userID, grade)
			})
			switch {
			case err == nil:
				app.sessions.Flash(w, r, flashSuccess, fmt.Sprintf("✅ Le grade de %s a été mis à jour à %s.", target.Pseudo, grade))
				http.Redirect(w, r, "/admin/gestion_utilisateurs", http.StatusFound)
				return
			case errors.Is(err, errInvalidGrade):
				app.sessions.Flash(w, r, flashError, "❌ Grade invalide.")
			default:
				app.log.Error().Err(err).Msg("grade change failed")
				flashPersistenceFailure(app, w, r)
			}

		case "reset_password":
			err := app.store.Update(func(doc *Document) error {
				return ResetPassword(doc, userID, r.FormValue("new_password"), r.FormValue("confirm_password"))
			})
			switch {
			case err == nil:
				// Error styling on purpose, the forced reset must stand
				// out as a moderation act.
				app.sessions.Flash(w, r, flashError, fmt.Sprintf("⚠️ Le mot de passe de %s a été réinitialisé avec succès par l'administrateur.", target.Pseudo))
			case errors.Is(err, errPasswordMismatch):
				app.sessions.Flash(w, r, flashError, "❌ Les nouveaux mots de passe ne correspondent pas.")
			default:
				app.log.Error().Err(err).Msg("password reset failed")
				flashPersistenceFailure(app, w, r)
			}

		default:
			app.sessions.Flash(w, r, flashError, "❌ Action inconnue.")
		}
		http.Redirect(w, r, fmt.Sprintf("/admin/modifier_utilisateur/%d", userID), http.StatusFound)
	}
}

func gererComptesAdminHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, ok := requireAdmin(app, w, r, "⛔ Accès refusé. Seuls les Administrateurs peuvent gérer les comptes.")
		if !ok {
			return
		}
		app.render(w, r, "gerer_comptes_admin", pageData{
			Title: "Gestion des Comptes",
			Users: listUsers(app, 0),
		})
	}
}

func gererCompteDetailHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := requireAdmin(app, w, r, "⛔ Accès refusé. Seuls les Administrateurs peuvent gérer les comptes.")
		if !ok {
			return
		}
		userID, found := pathID(r, "userId")
		target := loadUser(app, userID)
		if !found || target == nil {
			app.sessions.Flash(w, r, flashError, "❌ Utilisateur non trouvé.")
			http.Redirect(w, r, "/admin/gerer_comptes_admin", http.StatusFound)
			return
		}

		if r.Method != http.MethodPost {
			app.render(w, r, "gerer_compte_detail", pageData{Title: "Gérer le Compte", User: target})
			return
		}

		if !rejectSelfTarget(app, w, r, session, userID, "❌ Vous ne pouvez pas modifier votre propre statut ou supprimer votre compte via cette page.", "/admin/gerer_comptes_admin") {
			return
		}

		switch r.FormValue("action") {
		case "delete_account":
			var pseudo string
			err := app.store.Update(func(doc *Document) error {
				var deleteErr error
				pseudo, deleteErr = DeleteUser(doc, userID)
				return deleteErr
			})
			if err != nil {
				app.log.Error().Err(err).Msg("account deletion failed")
				flashPersistenceFailure(app, w, r)
				http.Redirect(w, r, fmt.Sprintf("/admin/gerer_compte/%d", userID), http.StatusFound)
				return
			}
			app.sessions.Flash(w, r, flashSuccess, fmt.Sprintf("🗑️ Le compte de %s a été supprimé définitivement.", pseudo))
			http.Redirect(w, r, "/admin/gerer_comptes_admin", http.StatusFound)
			return

		case "update_status":
			status := r.FormValue("status")
			err := app.store.Update(func(doc *Document) error {
				return ChangeStatus(doc, userID, status,
					r.FormValue("suspension_reason"),
					r.FormValue("suspension_date"),
					r.FormValue("suspension_time"))
			})
			switch {
			case err == nil:
				app.sessions.Flash(w, r, flashSuccess, fmt.Sprintf("✅ Le statut de %s est maintenant %s.", target.Pseudo, status))
			case errors.Is(err, errInvalidStatus):
				app.sessions.Flash(w, r, flashError, "❌ Statut invalide.")
			case errors.Is(err, errReasonRequired):
				app.sessions.Flash(w, r, flashError, "❌ La raison de la suspension est obligatoire.")
			case errors.Is(err, errInvalidDate):
				app.sessions.Flash(w, r, flashError, "❌ Format de date ou d'heure invalide pour la suspension.")
			default:
				app.log.Error().Err(err).Msg("status change failed")
				flashPersistenceFailure(app, w, r)
			}

		default:
			app.sessions.Flash(w, r, flashError, "❌ Action inconnue.")
		}
		http.Redirect(w, r, fmt.Sprintf("/admin/gerer_compte/%d", userID), http.StatusFound)
	}
}

/* ============================================================
   GEMME ADMINISTRATION
   ============================================================ */

func gestionGemmesHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, ok := requireAdmin(app, w, r, "⛔ Accès refusé. Seuls les Administrateurs peuvent gérer les gemmes.")
		if !ok {
			return
		}
		app.render(w, r, "gestion_gemmes", pageData{
			Title: "Gestion des Gemmes",
			Users: listUsers(app, 0),
		})
	}
}

func gererGemmesDetailHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, ok := requireAdmin(app, w, r, "⛔ Accès refusé. Seuls les Administrateurs peuvent gérer les gemmes.")
		if !ok {
			return
		}
		userID, found := pathID(r, "userId")
		target := loadUser(app, userID)
		if !found || target == nil {
			app.sessions.Flash(w, r, flashError, "❌ Utilisateur non trouvé.")
			http.Redirect(w, r, "/admin/gestion_gemmes", http.StatusFound)
			return
		}

		if r.Method != http.MethodPost {
			app.render(w, r, "gerer_gemmes_detail", pageData{Title: "Gérer les Gemmes", User: target})
			return
		}

		if r.FormValue("action") != "update_gemmes" {
			app.sessions.Flash(w, r, flashError, "❌ Action inconnue.")
			http.Redirect(w, r, fmt.Sprintf("/admin/gerer_gemmes/%d", userID), http.StatusFound)
			return
		}

		amount, err := parsePositiveInt(r.FormValue("gemmes_amount"))
		if err != nil {
			if errors.Is(err, errNotAnInteger) {
				app.sessions.Flash(w, r, flashError, "❌ Le montant des gemmes doit être un nombre entier valide.")
			} else {
				app.sessions.Flash(w, r, flashError, "❌ Le montant doit être supérieur à zéro.")
			}
			http.Redirect(w, r, fmt.Sprintf("/admin/gerer_gemmes/%d", userID), http.StatusFound)
			return
		}
		operation := r.FormValue("gemmes_operation")

		var balance int
		err = app.store.Update(func(doc *Document) error {
			var adjustErr error
			balance, adjustErr = AdjustGemmes(doc, userID, amount, operation)
			return adjustErr
		})
		switch {
		case err == nil && operation == gemmeOpAdd:
			app.sessions.Flash(w, r, flashSuccess, fmt.Sprintf("💎 %d Gemmes ajoutées à %s. Nouveau solde : %d.", amount, target.Pseudo, balance))
		case err == nil:
			app.sessions.Flash(w, r, flashSuccess, fmt.Sprintf("💎 %d Gemmes retirées de %s. Nouveau solde : %d.", amount, target.Pseudo, balance))
		case errors.Is(err, errInvalidOperation):
			app.sessions.Flash(w, r, flashError, "❌ Opération de gemmes invalide.")
		default:
			app.log.Error().Err(err).Msg("gemme adjustment failed")
			flashPersistenceFailure(app, w, r)
		}
		http.Redirect(w, r, fmt.Sprintf("/admin/gerer_gemmes/%d", userID), http.StatusFound)
	}
}
