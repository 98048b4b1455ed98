package main

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// App bundles the collaborators every handler needs.
type App struct {
	cfg      Config
	store    *Store
	sessions *SessionCodec
	views    *Views
	log      zerolog.Logger
}

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.DevMode {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		logger.Warn().Msg("dev mode enabled")
	}

	store, err := OpenStore(cfg.DataFile, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DataFile).Msg("failed to open data file")
	}

	views, err := NewViews()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse templates")
	}

	app := &App{
		cfg:      cfg,
		store:    store,
		sessions: NewSessionCodec(cfg.SessionSecret, cfg.SessionTTL),
		views:    views,
		log:      logger,
	}

	r := mux.NewRouter()
	registerRoutes(r, app)

	logger.Info().Str("addr", cfg.ListenAddr).Msg("listening")
	if err := http.ListenAndServe(cfg.ListenAddr, r); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

/* ======================
   Routes
   ====================== */

func registerRoutes(r *mux.Router, app *App) {
	r.HandleFunc("/", accueilHandler(app)).Methods(http.MethodGet)
	r.HandleFunc("/accueil", accueilHandler(app)).Methods(http.MethodGet)
	r.HandleFunc("/wiki", wikiHandler(app)).Methods(http.MethodGet)
	r.HandleFunc("/connexion", connexionHandler(app)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/inscription", inscriptionHandler(app)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/deconnexion", deconnexionHandler(app)).Methods(http.MethodGet)
	r.HandleFunc("/mon_compte", monCompteHandler(app)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/creer_article", creerArticleHandler(app)).Methods(http.MethodGet, http.MethodPost)

	r.HandleFunc("/shop", shopHandler(app)).Methods(http.MethodGet)
	r.HandleFunc("/shop/acheter/{itemId}", acheterHandler(app)).Methods(http.MethodGet)

	r.HandleFunc("/admin/ajouter_article_shop", ajouterArticleShopHandler(app)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/admin/gestion_utilisateurs", gestionUtilisateursHandler(app)).Methods(http.MethodGet)
	r.HandleFunc("/admin/modifier_utilisateur/{userId}", modifierUtilisateurHandler(app)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/admin/gerer_comptes_admin", gererComptesAdminHandler(app)).Methods(http.MethodGet)
	r.HandleFunc("/admin/gerer_compte/{userId}", gererCompteDetailHandler(app)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/admin/gestion_gemmes", gestionGemmesHandler(app)).Methods(http.MethodGet)
	r.HandleFunc("/admin/gerer_gemmes/{userId}", gererGemmesDetailHandler(app)).Methods(http.MethodGet, http.MethodPost)
}
