package models

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment records a completed payment attempt. Nothing links it to a Meeting.
type Payment struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email string             `bson:"email" json:"email"`
	Extra bson.M             `bson:",inline" json:"-"`
}

type payment Payment

func (p Payment) MarshalJSON() ([]byte, error) {
	return marshalFlat(payment(p), p.Extra)
}

func (p *Payment) UnmarshalJSON(data []byte) error {
	var known payment
	extra, err := unmarshalFlat(data, &known, "_id", "email")
	if err != nil {
		return err
	}
	*p = Payment(known)
	p.Extra = extra
	return nil
}

// Feedback has no required shape.
type Feedback struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Extra bson.M             `bson:",inline" json:"-"`
}

type feedback Feedback

func (f Feedback) MarshalJSON() ([]byte, error) {
	return marshalFlat(feedback(f), f.Extra)
}

func (f *Feedback) UnmarshalJSON(data []byte) error {
	var known feedback
	extra, err := unmarshalFlat(data, &known, "_id")
	if err != nil {
		return err
	}
	*f = Feedback(known)
	f.Extra = extra
	return nil
}
