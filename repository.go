package main

// Lookup and id-allocation helpers over an already-loaded document.
// All lookups are linear scans returning the first match; the document
// stays small enough that nothing faster is warranted.

func (d *Document) FindUserByID(id int) *User {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i]
		}
	}
	return nil
}

func (d *Document) FindUserByPseudo(pseudo string) *User {
	for i := range d.Users {
		if d.Users[i].Pseudo == pseudo {
			return &d.Users[i]
		}
	}
	return nil
}

func (d *Document) FindUserByEmail(email string) *User {
	for i := range d.Users {
		if d.Users[i].Email == email {
			return &d.Users[i]
		}
	}
	return nil
}

// FindUserByIdentifier matches pseudo first, then email. Case-sensitive
// exact match on both.
func (d *Document) FindUserByIdentifier(identifier string) *User {
	for i := range d.Users {
		if d.Users[i].Pseudo == identifier || d.Users[i].Email == identifier {
			return &d.Users[i]
		}
	}
	return nil
}

func (d *Document) FindArticleByID(id int) *Article {
	for i := range d.Articles {
		if d.Articles[i].ID == id {
			return &d.Articles[i]
		}
	}
	return nil
}

func (d *Document) FindShopItemByID(id int) *ShopItem {
	for i := range d.ShopItems {
		if d.ShopItems[i].ID == id {
			return &d.ShopItems[i]
		}
	}
	return nil
}

// Counter increments. Ids are monotonic per kind and never reused; the
// caller is responsible for persisting the document afterwards.

func (d *Document) NextUserID() int {
	d.LastUserID++
	return d.LastUserID
}

func (d *Document) NextArticleID() int {
	d.LastArticleID++
	return d.LastArticleID
}

func (d *Document) NextShopItemID() int {
	d.LastShopItemID++
	return d.LastShopItemID
}
