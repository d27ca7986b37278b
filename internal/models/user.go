package models

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin  = "admin"
	RoleDoctor = "doctor"
)

type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email string             `bson:"email" json:"email"`
	URL   string             `bson:"url,omitempty" json:"url,omitempty"`
	Bio   string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Role  string             `bson:"role,omitempty" json:"role,omitempty"` // "admin", "doctor" or empty
	Extra bson.M             `bson:",inline" json:"-"`
}

type user User

func (u User) MarshalJSON() ([]byte, error) {
	return marshalFlat(user(u), u.Extra)
}

func (u *User) UnmarshalJSON(data []byte) error {
	var known user
	extra, err := unmarshalFlat(data, &known, "_id", "email", "url", "bio", "role")
	if err != nil {
		return err
	}
	*u = User(known)
	u.Extra = extra
	return nil
}
