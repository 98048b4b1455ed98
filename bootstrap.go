package main

import "time"

// Seed credentials for the default administrator created on first boot.
// Change the password after the first login.
const (
	seedAdminPseudo   = "SuperAdmin"
	seedAdminEmail    = "admin@example.com"
	seedAdminPassword = "password123"
	seedAdminGemmes   = 500
)

// seedDocument builds the initial document: one administrator, one
// welcome article and one shop item, so a fresh install is usable
// immediately.
func seedDocument(now time.Time) *Document {
	hash, err := hashPassword(seedAdminPassword)
	if err != nil {
		// bcrypt only fails on invalid cost; the seed constants are fixed.
		panic(err)
	}
	nowStr := now.Format(dateFormat)

	return &Document{
		LastUserID:     1,
		LastArticleID:  1,
		LastShopItemID: 1,
		Users: []User{{
			ID:           1,
			Pseudo:       seedAdminPseudo,
			Email:        seedAdminEmail,
			PasswordHash: hash,
			Grade:        GradeAdmin,
			Status:       StatusActive,
			Gemmes:       seedAdminGemmes,
		}},
		Articles: []Article{{
			ID:              1,
			Titre:           "Article Initial de Bienvenue",
			Contenu:         "Ceci est le premier article, créé automatiquement au lancement de l'application.",
			AuteurID:        1,
			DatePublication: nowStr,
		}},
		ShopItems: []ShopItem{{
			ID:          1,
			Nom:         "Clé de Caisse Basique",
			Description: "Une clé pour ouvrir une caisse de récompenses standard en jeu.",
			PrixGemmes:  50,
			DateAjout:   nowStr,
		}},
	}
}
