package main

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"
)

const msgInternalError = "❌ Une erreur interne est survenue. Veuillez réessayer."

// flashPersistenceFailure reports a failed document write for this
// request. The process keeps running; the in-memory change is lost.
func flashPersistenceFailure(app *App, w http.ResponseWriter, r *http.Request) {
	app.sessions.Flash(w, r, flashError, msgInternalError)
}

func accueilHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var articles []ArticleView
		err := app.store.View(func(doc *Document) {
			authors := make(map[int]*User, len(doc.Users))
			for i := range doc.Users {
				authors[doc.Users[i].ID] = &doc.Users[i]
			}
			articles = make([]ArticleView, 0, len(doc.Articles))
			for _, a := range doc.Articles {
				view := ArticleView{
					Titre:           a.Titre,
					Contenu:         truncateContent(a.Contenu, 300),
					DatePublication: a.DatePublication,
					NomAuteur:       "Inconnu",
					GradeAuteur:     "Visiteur",
				}
				if author, ok := authors[a.AuteurID]; ok {
					view.NomAuteur = author.Pseudo
					view.GradeAuteur = author.Grade
				}
				articles = append(articles, view)
			}
		})
		if err != nil {
			app.log.Error().Err(err).Msg("failed to load articles")
		}

		sort.SliceStable(articles, func(i, j int) bool {
			ti, _ := time.Parse(dateFormat, articles[i].DatePublication)
			tj, _ := time.Parse(dateFormat, articles[j].DatePublication)
			return tj.Before(ti)
		})

		app.render(w, r, "accueil", pageData{Title: "Accueil - HeraCraft", Articles: articles})
	}
}

func wikiHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app.render(w, r, "wiki", pageData{Title: "HeraCraft Wiki"})
	}
}

func connexionHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			app.render(w, r, "connexion", pageData{Title: "Connexion"})
			return
		}

		identifier := r.FormValue("pseudo")
		password := r.FormValue("mot_de_passe")

		var result *LoginResult
		err := app.store.Update(func(doc *Document) error {
			var loginErr error
			result, loginErr = EvaluateLogin(doc, identifier, password, time.Now())
			return loginErr
		})

		if err != nil {
			var suspension *SuspensionError
			switch {
			case errors.Is(err, errBadCredentials):
				app.sessions.Flash(w, r, flashError, "❌ Pseudo/Email ou mot de passe incorrect.")
			case errors.Is(err, errBanned):
				app.sessions.Flash(w, r, flashError, "❌ Votre compte est banni définitivement du site.")
			case errors.As(err, &suspension):
				switch {
				case suspension.MalformedDate:
					app.sessions.Flash(w, r, flashError, "⚠️ Votre compte est suspendu mais la date de fin est invalide. Contactez un administrateur.")
				case suspension.Indefinite:
					app.sessions.Flash(w, r, flashError, fmt.Sprintf("⚠️ Votre compte est suspendu pour une durée indéterminée. Raison : \"%s\"", suspension.Reason))
				default:
					app.sessions.Flash(w, r, flashError, fmt.Sprintf("⚠️ Votre compte est suspendu jusqu'au %s pour la raison suivante : \"%s\"", suspension.Until, suspension.Reason))
				}
			default:
				app.log.Error().Err(err).Msg("login failed")
				flashPersistenceFailure(app, w, r)
			}
			http.Redirect(w, r, "/connexion", http.StatusFound)
			return
		}

		if err := app.sessions.WriteSession(w, Session{UserID: result.User.ID, Grade: result.User.Grade}); err != nil {
			app.log.Error().Err(err).Msg("failed to write session cookie")
			flashPersistenceFailure(app, w, r)
			http.Redirect(w, r, "/connexion", http.StatusFound)
			return
		}
		if result.Reactivated {
			app.sessions.Flash(w, r, flashSuccess, "✅ Votre suspension est terminée. Votre compte est réactivé.")
		}
		app.sessions.Flash(w, r, flashSuccess, fmt.Sprintf("👋 Bienvenue ! Vous êtes connecté en tant que **%s**.", result.User.Grade))
		http.Redirect(w, r, "/accueil", http.StatusFound)
	}
}

func inscriptionHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			app.render(w, r, "inscription", pageData{Title: "Inscription"})
			return
		}

		pseudo := r.FormValue("pseudo")
		email := r.FormValue("email")
		password := r.FormValue("mot_de_passe")

		err := app.store.Update(func(doc *Document) error {
			_, registerErr := RegisterUser(doc, pseudo, email, password)
			return registerErr
		})

		switch {
		case err == nil:
			app.sessions.Flash(w, r, flashSuccess, "✅ Inscription réussie ! Vous pouvez vous connecter.")
			http.Redirect(w, r, "/connexion", http.StatusFound)
		case errors.Is(err, errDuplicateIdentity):
			app.sessions.Flash(w, r, flashError, "❌ Ce pseudo ou cet email est déjà utilisé.")
			http.Redirect(w, r, "/inscription", http.StatusFound)
		default:
			app.log.Error().Err(err).Msg("registration failed")
			flashPersistenceFailure(app, w, r)
			http.Redirect(w, r, "/inscription", http.StatusFound)
		}
	}
}

func deconnexionHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app.sessions.ClearSession(w)
		app.sessions.Flash(w, r, flashSuccess, "👋 Vous êtes déconnecté.")
		http.Redirect(w, r, "/accueil", http.StatusFound)
	}
}

func monCompteHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := requireUser(app, w, r, "⛔ Vous devez être connecté pour accéder à cette page.")
		if !ok {
			return
		}

		if r.Method == http.MethodPost {
			oldPassword := r.FormValue("ancien_mot_de_passe")
			newPassword := r.FormValue("nouveau_mot_de_passe")
			confirm := r.FormValue("confirmation_nouveau_mot_de_passe")

			err := app.store.Update(func(doc *Document) error {
				return ChangePassword(doc, session.UserID, oldPassword, newPassword, confirm)
			})
			switch {
			case err == nil:
				app.sessions.Flash(w, r, flashSuccess, "✅ Votre mot de passe a été mis à jour avec succès.")
			case errors.Is(err, errBadCredentials):
				app.sessions.Flash(w, r, flashError, "❌ Ancien mot de passe incorrect. Le mot de passe n'a pas été modifié.")
			case errors.Is(err, errPasswordMismatch):
				app.sessions.Flash(w, r, flashError, "❌ Les nouveaux mots de passe ne correspondent pas.")
			default:
				app.log.Error().Err(err).Msg("password change failed")
				flashPersistenceFailure(app, w, r)
			}
			http.Redirect(w, r, "/mon_compte", http.StatusFound)
			return
		}

		var user *User
		_ = app.store.View(func(doc *Document) {
			if u := doc.FindUserByID(session.UserID); u != nil {
				copied := *u
				user = &copied
			}
		})
		if user == nil {
			// Account deleted while the cookie was still valid.
			app.sessions.ClearSession(w)
			app.sessions.Flash(w, r, flashError, "⛔ Vous devez être connecté pour accéder à cette page.")
			http.Redirect(w, r, "/connexion", http.StatusFound)
			return
		}
		app.render(w, r, "mon_compte", pageData{Title: "Mon Compte", User: user})
	}
}

func shopHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := app.sessions.ReadSession(r)

		var items []ShopItem
		var user *User
		_ = app.store.View(func(doc *Document) {
			items = append(items, doc.ShopItems...)
			if session != nil {
				if u := doc.FindUserByID(session.UserID); u != nil {
					copied := *u
					user = &copied
				}
			}
		})
		sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

		app.render(w, r, "shop", pageData{Title: "Boutique HeraCraft", Items: items, User: user})
	}
}

func acheterHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := requireUser(app, w, r, "⛔ Vous devez être connecté pour effectuer un achat.")
		if !ok {
			return
		}
		itemID, ok := pathID(r, "itemId")
		if !ok {
			app.sessions.Flash(w, r, flashError, "❌ Article non trouvé dans la boutique.")
			http.Redirect(w, r, "/shop", http.StatusFound)
			return
		}

		var item *ShopItem
		var balance int
		err := app.store.Update(func(doc *Document) error {
			var purchaseErr error
			item, balance, purchaseErr = PurchaseItem(doc, session.UserID, itemID)
			return purchaseErr
		})

		var funds *InsufficientFundsError
		switch {
		case err == nil:
			app.sessions.Flash(w, r, flashSuccess, fmt.Sprintf("✅ Achat réussi ! %s acheté pour %d 💎. (Nouveau solde : %d Gemmes). L'article vous sera livré en jeu sous peu.", item.Nom, item.PrixGemmes, balance))
		case errors.Is(err, errItemNotFound):
			app.sessions.Flash(w, r, flashError, "❌ Article non trouvé dans la boutique.")
		case errors.Is(err, errAccountRestricted):
			app.sessions.Flash(w, r, flashError, "❌ Vous ne pouvez pas acheter d'articles si votre compte est Banni ou Suspendu.")
		case errors.As(err, &funds):
			app.sessions.Flash(w, r, flashError, fmt.Sprintf("❌ Achat échoué. Solde de Gemmes insuffisant. Il vous manque %d 💎 pour acheter %s.", funds.Missing, funds.Item))
		default:
			app.log.Error().Err(err).Msg("purchase failed")
			flashPersistenceFailure(app, w, r)
		}
		http.Redirect(w, r, "/shop", http.StatusFound)
	}
}
