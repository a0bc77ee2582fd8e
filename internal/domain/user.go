package domain

import (
	"net/mail"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a storefront account. PasswordHash is a bcrypt hash and never
// leaves the server.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	Addresses    []Address          `bson:"addresses" json:"addresses"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DefaultAddress returns the address flagged as default, or the first one.
func (u *User) DefaultAddress() (Address, bool) {
	for _, a := range u.Addresses {
		if a.IsDefault {
			return a, true
		}
	}
	if len(u.Addresses) > 0 {
		return u.Addresses[0], true
	}
	return Address{}, false
}

type Address struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Label      string             `bson:"label,omitempty" json:"label,omitempty"`
	Street     string             `bson:"street" json:"street"`
	City       string             `bson:"city" json:"city"`
	State      string             `bson:"state,omitempty" json:"state,omitempty"`
	PostalCode string             `bson:"postal_code" json:"postal_code"`
	Country    string             `bson:"country" json:"country"`
	Phone      string             `bson:"phone,omitempty" json:"phone,omitempty"`
	IsDefault  bool               `bson:"is_default" json:"is_default"`
}

// Complete reports whether the address carries everything needed to ship.
func (a Address) Complete() bool {
	return a.Street != "" && a.City != "" && a.PostalCode != "" && a.Country != ""
}

// NormalizeEmail is applied before every lookup and write so the unique
// index sees one spelling per address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail accepts a bare address such as "ada@example.com".
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	host := email[strings.LastIndex(email, "@")+1:]
	return strings.Contains(host, ".")
}
