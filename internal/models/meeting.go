package models

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusAccepted = "accepted"
	PaymentDone    = "done"
)

// Meeting is an appointment request from Email to the doctor at DocEmail.
// Status and Payment are written independently of each other.
type Meeting struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email    string             `bson:"email" json:"email"`
	DocEmail string             `bson:"doc_email" json:"doc_email"`
	Status   string             `bson:"status,omitempty" json:"status,omitempty"`
	Payment  string             `bson:"payment,omitempty" json:"payment,omitempty"`
	Extra    bson.M             `bson:",inline" json:"-"`
}

type meeting Meeting

func (m Meeting) MarshalJSON() ([]byte, error) {
	return marshalFlat(meeting(m), m.Extra)
}

func (m *Meeting) UnmarshalJSON(data []byte) error {
	var known meeting
	extra, err := unmarshalFlat(data, &known, "_id", "email", "doc_email", "status", "payment")
	if err != nil {
		return err
	}
	*m = Meeting(known)
	m.Extra = extra
	return nil
}

// MeetingState is derived from the Status and Payment fields; nothing stores it.
type MeetingState string

const (
	StateRequested MeetingState = "requested"
	StateAccepted  MeetingState = "accepted"
	StatePaid      MeetingState = "paid" // paid but never accepted
	StateCompleted MeetingState = "completed"
)

func (m Meeting) State() MeetingState {
	accepted := m.Status == StatusAccepted
	paid := m.Payment == PaymentDone
	switch {
	case accepted && paid:
		return StateCompleted
	case accepted:
		return StateAccepted
	case paid:
		return StatePaid
	default:
		return StateRequested
	}
}

type MeetingEvent string

const (
	EventAccept         MeetingEvent = "accept"
	EventConfirmPayment MeetingEvent = "confirm_payment"
)

var ErrInvalidTransition = errors.New("invalid meeting transition")

// From is the only state ev may be applied to.
func (ev MeetingEvent) From() MeetingState {
	switch ev {
	case EventAccept:
		return StateRequested
	case EventConfirmPayment:
		return StateAccepted
	}
	return ""
}

// StateFilter matches the stored meetings whose State is s. Any status other
// than accepted counts as not accepted, the same way State reads it.
func StateFilter(s MeetingState) bson.M {
	notAccepted := bson.M{"$ne": StatusAccepted}
	notPaid := bson.M{"$ne": PaymentDone}
	switch s {
	case StateRequested:
		return bson.M{"status": notAccepted, "payment": notPaid}
	case StateAccepted:
		return bson.M{"status": StatusAccepted, "payment": notPaid}
	case StatePaid:
		return bson.M{"status": notAccepted, "payment": PaymentDone}
	case StateCompleted:
		return bson.M{"status": StatusAccepted, "payment": PaymentDone}
	}
	return nil
}

// Transition returns the state reached by applying ev to from. Only
// requested -> accepted -> completed is allowed.
func Transition(from MeetingState, ev MeetingEvent) (MeetingState, error) {
	if from == ev.From() {
		switch ev {
		case EventAccept:
			return StateAccepted, nil
		case EventConfirmPayment:
			return StateCompleted, nil
		}
	}
	return from, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, ev, from)
}
