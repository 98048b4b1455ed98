package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const dateFormat = "2006-01-02 15:04:05"

const (
	GradeMember = "Membre"
	GradeAdmin  = "Administrateur"

	StatusActive    = "Actif"
	StatusSuspended = "Suspendu"
	StatusBanned    = "Banni"
)

type User struct {
	ID                int     `json:"id"`
	Pseudo            string  `json:"pseudo"`
	Email             string  `json:"email"`
	PasswordHash      string  `json:"password_hash"`
	Grade             string  `json:"grade"`
	Status            string  `json:"status"`
	SuspensionReason  *string `json:"suspension_reason"`
	SuspensionEndDate *string `json:"suspension_end_date"`
	Gemmes            int     `json:"gemmes"`
}

type Article struct {
	ID              int    `json:"id"`
	Titre           string `json:"titre"`
	Contenu         string `json:"contenu"`
	AuteurID        int    `json:"auteur_id"`
	DatePublication string `json:"date_publication"`
}

type ShopItem struct {
	ID          int    `json:"id"`
	Nom         string `json:"nom"`
	Description string `json:"description"`
	PrixGemmes  int    `json:"prix_gemmes"`
	DateAjout   string `json:"date_ajout"`
}

// Document is the single aggregate root holding all persisted state.
// The whole document is the unit of load and save; there are no
// partial writes.
type Document struct {
	LastUserID     int        `json:"last_user_id"`
	LastArticleID  int        `json:"last_article_id"`
	LastShopItemID int        `json:"last_shop_item_id"`
	Users          []User     `json:"users"`
	Articles       []Article  `json:"articles"`
	ShopItems      []ShopItem `json:"shop_items"`
}

var errSaveFailed = errors.New("SAVE_FAILED")

// Store owns the on-disk JSON document. Every mutating operation goes
// through Update, which holds the mutex for the whole load-mutate-save
// cycle so concurrent requests cannot lose each other's writes.
type Store struct {
	path string
	mu   sync.Mutex
	log  zerolog.Logger
}

func OpenStore(path string, logger zerolog.Logger) (*Store, error) {
	s := &Store{path: path, log: logger}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// View loads a fresh copy of the document and hands it to fn. Render-only
// reads go through here and may observe slightly stale data.
func (s *Store) View(fn func(doc *Document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	fn(doc)
	return nil
}

// Update runs fn inside the store's critical section and persists the
// document when fn succeeds. If fn returns an error nothing is written.
func (s *Store) Update(fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(doc)
}

func (s *Store) load() (*Document, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil || len(raw) == 0 {
		doc := seedDocument(time.Now())
		if err := s.save(doc); err != nil {
			return nil, err
		}
		return doc, nil
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.log.Warn().Str("path", s.path).Err(err).Msg("data file is corrupt, reseeding initial document")
		fresh := seedDocument(time.Now())
		if err := s.save(fresh); err != nil {
			return nil, err
		}
		return fresh, nil
	}

	migrateDocument(&doc)
	return &doc, nil
}

func (s *Store) save(doc *Document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		s.log.Error().Str("path", s.path).Err(err).Msg("failed to write data file")
		return errSaveFailed
	}
	return nil
}

// migrateDocument applies forward-compatible fixups so the rest of the
// system never sees partial records. Silent by design.
func migrateDocument(doc *Document) {
	for i := range doc.Users {
		u := &doc.Users[i]
		if u.Status == "" {
			u.Status = StatusActive
			u.SuspensionReason = nil
			u.SuspensionEndDate = nil
		}
		if u.Gemmes < 0 {
			u.Gemmes = 0
		}
	}
	if doc.Users == nil {
		doc.Users = []User{}
	}
	if doc.Articles == nil {
		doc.Articles = []Article{}
	}
	if doc.ShopItems == nil {
		doc.ShopItems = []ShopItem{}
	}
	if doc.LastShopItemID == 0 {
		doc.LastShopItemID = len(doc.ShopItems)
	}
}
