package models

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Doctor lives in its own collection. Role is only written by a promotion.
// Fee keeps whatever JSON value the caller sent, number or string.
type Doctor struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email         string             `bson:"email" json:"email"`
	Role          string             `bson:"role,omitempty" json:"role,omitempty"`
	Institute     string             `bson:"institute,omitempty" json:"institute,omitempty"`
	Category      string             `bson:"category,omitempty" json:"category,omitempty"`
	Qualification string             `bson:"qualification,omitempty" json:"qualification,omitempty"`
	Fee           any                `bson:"fee,omitempty" json:"fee,omitempty"`
	URL           string             `bson:"url,omitempty" json:"url,omitempty"`
	Bio           string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Extra         bson.M             `bson:",inline" json:"-"`
}

type doctor Doctor

func (d Doctor) MarshalJSON() ([]byte, error) {
	return marshalFlat(doctor(d), d.Extra)
}

func (d *Doctor) UnmarshalJSON(data []byte) error {
	var known doctor
	extra, err := unmarshalFlat(data, &known,
		"_id", "email", "role", "institute", "category", "qualification", "fee", "url", "bio")
	if err != nil {
		return err
	}
	*d = Doctor(known)
	d.Extra = extra
	return nil
}
