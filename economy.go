package main

import (
	"errors"
	"fmt"
)

var (
	errInvalidAmount     = errors.New("INVALID_AMOUNT")
	errInvalidOperation  = errors.New("INVALID_GEMME_OPERATION")
	errItemNotFound      = errors.New("ITEM_NOT_FOUND")
	errAccountRestricted = errors.New("ACCOUNT_RESTRICTED")
)

const (
	gemmeOpAdd    = "add"
	gemmeOpRemove = "remove"
)

// InsufficientFundsError reports the exact shortfall so the notice can
// tell the buyer how many gemmes they are missing.
type InsufficientFundsError struct {
	Item    string
	Price   int
	Missing int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("INSUFFICIENT_GEMMES missing=%d", e.Missing)
}

// AdjustGemmes applies an admin grant or debit. Amounts must be
// strictly positive; a remove never takes the balance below zero, it
// clamps without raising an error. Returns the new balance.
func AdjustGemmes(doc *Document, userID int, amount int, operation string) (int, error) {
	if amount <= 0 {
		return 0, errInvalidAmount
	}
	user := doc.FindUserByID(userID)
	if user == nil {
		return 0, errUserNotFound
	}
	switch operation {
	case gemmeOpAdd:
		user.Gemmes += amount
	case gemmeOpRemove:
		user.Gemmes -= amount
		if user.Gemmes < 0 {
			user.Gemmes = 0
		}
	default:
		return 0, errInvalidOperation
	}
	return user.Gemmes, nil
}

// PurchaseItem debits exactly the item price from an active account.
// Fulfillment is out of scope here: the ledger's responsibility ends at
// the debit, delivery happens in game.
func PurchaseItem(doc *Document, userID int, itemID int) (*ShopItem, int, error) {
	user := doc.FindUserByID(userID)
	if user == nil {
		return nil, 0, errUserNotFound
	}
	item := doc.FindShopItemByID(itemID)
	if item == nil {
		return nil, 0, errItemNotFound
	}
	if user.Status != StatusActive {
		return nil, 0, errAccountRestricted
	}
	if user.Gemmes < item.PrixGemmes {
		return nil, 0, &InsufficientFundsError{
			Item:    item.Nom,
			Price:   item.PrixGemmes,
			Missing: item.PrixGemmes - user.Gemmes,
		}
	}
	user.Gemmes -= item.PrixGemmes
	return item, user.Gemmes, nil
}
