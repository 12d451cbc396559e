package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Tenant is an account allowed to file maintenance reports.
type Tenant struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Unit      string             `bson:"unit,omitempty" json:"unit,omitempty"`
	Password  string             `bson:"password,omitempty" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (t *Tenant) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(t.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	t.Password = string(hashed)
	return nil
}

func (t *Tenant) ComparePassword(candidate string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(t.Password), []byte(candidate))
	return err == nil
}
