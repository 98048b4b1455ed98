package main

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	errUserNotFound      = errors.New("USER_NOT_FOUND")
	errDuplicateIdentity = errors.New("IDENTITY_IN_USE")
	errBadCredentials    = errors.New("INVALID_CREDENTIALS")
	errBanned            = errors.New("ACCOUNT_BANNED")
	errPasswordMismatch  = errors.New("PASSWORD_MISMATCH")
	errInvalidGrade      = errors.New("INVALID_GRADE")
	errInvalidStatus     = errors.New("INVALID_STATUS")
	errReasonRequired    = errors.New("SUSPENSION_REASON_REQUIRED")
	errInvalidDate       = errors.New("INVALID_SUSPENSION_DATE")
)

const defaultSuspensionReason = "Raison non spécifiée."

// SuspensionError blocks a login while a suspension is in effect. Until
// is empty for indefinite suspensions; MalformedDate flags a stored end
// date that no longer parses, in which case the suspension is NOT
// cleared and the user is told to contact an administrator.
type SuspensionError struct {
	Reason        string
	Until         string
	Indefinite    bool
	MalformedDate bool
}

func (e *SuspensionError) Error() string {
	switch {
	case e.MalformedDate:
		return "ACCOUNT_SUSPENDED_INVALID_DATE"
	case e.Indefinite:
		return "ACCOUNT_SUSPENDED_INDEFINITELY"
	default:
		return fmt.Sprintf("ACCOUNT_SUSPENDED_UNTIL %s", e.Until)
	}
}

// RegisterUser creates a new member account. Pseudo and email must both
// be unused (case-sensitive exact match across all users).
func RegisterUser(doc *Document, pseudo string, email string, password string) (*User, error) {
	for i := range doc.Users {
		if doc.Users[i].Pseudo == pseudo || doc.Users[i].Email == email {
			return nil, errDuplicateIdentity
		}
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	doc.Users = append(doc.Users, User{
		ID:           doc.NextUserID(),
		Pseudo:       pseudo,
		Email:        email,
		PasswordHash: hash,
		Grade:        GradeMember,
		Status:       StatusActive,
		Gemmes:       0,
	})
	return &doc.Users[len(doc.Users)-1], nil
}

type LoginResult struct {
	User        *User
	Reactivated bool
}

// EvaluateLogin checks credentials and account standing. When it marks
// a suspension as expired it mutates the document; the caller must run
// it inside Store.Update so the reactivation persists.
func EvaluateLogin(doc *Document, identifier string, password string, now time.Time) (*LoginResult, error) {
	user := doc.FindUserByIdentifier(identifier)
	if user == nil || !verifyPassword(user.PasswordHash, password) {
		return nil, errBadCredentials
	}

	switch user.Status {
	case StatusBanned:
		return nil, errBanned
	case StatusSuspended:
		reason := defaultSuspensionReason
		if user.SuspensionReason != nil && *user.SuspensionReason != "" {
			reason = *user.SuspensionReason
		}
		if user.SuspensionEndDate == nil {
			return nil, &SuspensionError{Reason: reason, Indefinite: true}
		}
		endStr := *user.SuspensionEndDate
		end, err := time.ParseInLocation(dateFormat, endStr, now.Location())
		if err != nil {
			return nil, &SuspensionError{Reason: reason, MalformedDate: true}
		}
		if now.Before(end) {
			return nil, &SuspensionError{Reason: reason, Until: endStr}
		}
		reactivate(user)
		return &LoginResult{User: user, Reactivated: true}, nil
	}

	return &LoginResult{User: user}, nil
}

// reactivate is the Suspended -> Active transition: status back to
// Actif with the suspension fields cleared.
func reactivate(u *User) {
	u.Status = StatusActive
	u.SuspensionReason = nil
	u.SuspensionEndDate = nil
}

// ChangePassword is the self-service path and requires the current
// password to verify first.
func ChangePassword(doc *Document, userID int, oldPassword string, newPassword string, confirm string) error {
	user := doc.FindUserByID(userID)
	if user == nil {
		return errUserNotFound
	}
	if !verifyPassword(user.PasswordHash, oldPassword) {
		return errBadCredentials
	}
	if newPassword != confirm {
		return errPasswordMismatch
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return nil
}

// ResetPassword is the admin-forced path: no current-password check.
func ResetPassword(doc *Document, userID int, newPassword string, confirm string) error {
	user := doc.FindUserByID(userID)
	if user == nil {
		return errUserNotFound
	}
	if newPassword != confirm {
		return errPasswordMismatch
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return nil
}

func ChangeGrade(doc *Document, userID int, grade string) error {
	if grade != GradeMember && grade != GradeAdmin {
		return errInvalidGrade
	}
	user := doc.FindUserByID(userID)
	if user == nil {
		return errUserNotFound
	}
	user.Grade = grade
	return nil
}

// ChangeStatus is the only path that can set or clear Banni. For a
// suspension the reason is required and an optional end date+time must
// parse as a calendar timestamp; any other target status clears the
// suspension fields regardless of what was submitted.
func ChangeStatus(doc *Document, userID int, status string, reason string, datePart string, timePart string) error {
	if status != StatusActive && status != StatusSuspended && status != StatusBanned {
		return errInvalidStatus
	}
	user := doc.FindUserByID(userID)
	if user == nil {
		return errUserNotFound
	}

	if status != StatusSuspended {
		user.Status = status
		user.SuspensionReason = nil
		user.SuspensionEndDate = nil
		return nil
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errReasonRequired
	}
	var endDate *string
	if strings.TrimSpace(datePart) != "" {
		if strings.TrimSpace(timePart) == "" {
			timePart = "00:00:00"
		}
		stamp := fmt.Sprintf("%s %s", strings.TrimSpace(datePart), strings.TrimSpace(timePart))
		if _, err := time.Parse(dateFormat, stamp); err != nil {
			return errInvalidDate
		}
		endDate = &stamp
	}
	user.Status = StatusSuspended
	user.SuspensionReason = &reason
	user.SuspensionEndDate = endDate
	return nil
}

// DeleteUser removes the account and cascades to every article the user
// authored. Shop items carry no author reference and are untouched.
// Returns the deleted pseudo for the confirmation notice.
func DeleteUser(doc *Document, userID int) (string, error) {
	index := -1
	for i := range doc.Users {
		if doc.Users[i].ID == userID {
			index = i
			break
		}
	}
	if index < 0 {
		return "", errUserNotFound
	}
	pseudo := doc.Users[index].Pseudo

	kept := doc.Articles[:0]
	for _, a := range doc.Articles {
		if a.AuteurID != userID {
			kept = append(kept, a)
		}
	}
	doc.Articles = kept
	doc.Users = append(doc.Users[:index], doc.Users[index+1:]...)
	return pseudo, nil
}
