package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/meetdoc-api/internal/models"
	"github.com/harentsoaR/meetdoc-api/internal/store"
)

// IdentityService manages users and doctors and resolves their roles.
type IdentityService struct {
	users   store.Collection[models.User]
	doctors store.Collection[models.Doctor]
}

func NewIdentityService(users store.Collection[models.User], doctors store.Collection[models.Doctor]) *IdentityService {
	return &IdentityService{users: users, doctors: doctors}
}

type UserPatch struct {
	URL *string
	Bio *string
}

type DoctorPatch struct {
	Institute     *string
	Category      *string
	Qualification *string
	Fee           any
	URL           *string
	Bio           *string
}

// RegisterUser inserts u unless a user with the same email exists. An
// existing user is not an error; the result reports Created=false.
func (s *IdentityService) RegisterUser(ctx context.Context, u *models.User) (Registration, error) {
	found, err := emailExists(ctx, s.users, u.Email)
	if err != nil || found {
		return Registration{}, err
	}

	doc := *u
	doc.ID = primitive.NilObjectID
	doc.Role = ""
	id, err := s.users.InsertOne(ctx, &doc)
	if err != nil {
		return Registration{}, err
	}
	log.Info().Str("email", u.Email).Str("id", id.Hex()).Msg("user registered")
	return Registration{Created: true, InsertedID: id}, nil
}

// RegisterDoctor inserts d unless the email is already taken by a user or a doctor.
func (s *IdentityService) RegisterDoctor(ctx context.Context, d *models.Doctor) (Registration, error) {
	asUser, err := emailExists(ctx, s.users, d.Email)
	if err != nil || asUser {
		return Registration{}, err
	}
	asDoctor, err := emailExists(ctx, s.doctors, d.Email)
	if err != nil || asDoctor {
		return Registration{}, err
	}

	doc := *d
	doc.ID = primitive.NilObjectID
	doc.Role = ""
	id, err := s.doctors.InsertOne(ctx, &doc)
	if err != nil {
		return Registration{}, err
	}
	log.Info().Str("email", d.Email).Str("id", id.Hex()).Msg("doctor registered")
	return Registration{Created: true, InsertedID: id}, nil
}

func (s *IdentityService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.Find(ctx, nil)
}

func (s *IdentityService) GetUser(ctx context.Context, email string) (*models.User, error) {
	return findOne(ctx, s.users, byEmail(email))
}

func (s *IdentityService) UpdateUser(ctx context.Context, email string, p UserPatch) (store.UpdateResult, error) {
	fields := setFields{}
	fields.str("url", p.URL)
	fields.str("bio", p.Bio)
	set, err := fields.patch()
	if err != nil {
		return store.UpdateResult{}, err
	}
	return s.users.UpdateOne(ctx, byEmail(email), set)
}

func (s *IdentityService) DeleteUser(ctx context.Context, id string) (store.DeleteResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return store.DeleteResult{}, err
	}
	return s.users.DeleteOne(ctx, byID(oid))
}

// PromoteAdmin sets role=admin on the user with the given id. An unknown id
// yields a zero-match result.
func (s *IdentityService) PromoteAdmin(ctx context.Context, id string) (store.UpdateResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return store.UpdateResult{}, err
	}
	res, err := s.users.UpdateOne(ctx, byID(oid), bson.M{"role": models.RoleAdmin})
	if err == nil {
		log.Info().Str("id", id).Int64("matched", res.MatchedCount).Msg("user promoted to admin")
	}
	return res, err
}

// PromoteDoctor sets role=doctor on the doctor record with the given id.
func (s *IdentityService) PromoteDoctor(ctx context.Context, id string) (store.UpdateResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return store.UpdateResult{}, err
	}
	res, err := s.doctors.UpdateOne(ctx, byID(oid), bson.M{"role": models.RoleDoctor})
	if err == nil {
		log.Info().Str("id", id).Int64("matched", res.MatchedCount).Msg("doctor promoted")
	}
	return res, err
}

// IsAdmin is false for unknown emails.
func (s *IdentityService) IsAdmin(ctx context.Context, email string) (bool, error) {
	u, err := s.users.FindOne(ctx, byEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.Role == models.RoleAdmin, nil
}

// IsDoctor is false for unknown emails and for doctors not yet promoted.
func (s *IdentityService) IsDoctor(ctx context.Context, email string) (bool, error) {
	d, err := s.doctors.FindOne(ctx, byEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return d.Role == models.RoleDoctor, nil
}

// Role resolves the role carried by email, or "" for a plain or unknown account.
func (s *IdentityService) Role(ctx context.Context, email string) (string, error) {
	admin, err := s.IsAdmin(ctx, email)
	if err != nil {
		return "", err
	}
	if admin {
		return models.RoleAdmin, nil
	}
	doctor, err := s.IsDoctor(ctx, email)
	if err != nil {
		return "", err
	}
	if doctor {
		return models.RoleDoctor, nil
	}
	return "", nil
}

func (s *IdentityService) ListDoctors(ctx context.Context) ([]models.Doctor, error) {
	return s.doctors.Find(ctx, nil)
}

func (s *IdentityService) GetDoctor(ctx context.Context, email string) (*models.Doctor, error) {
	return findOne(ctx, s.doctors, byEmail(email))
}

func (s *IdentityService) DoctorsByCategory(ctx context.Context, category string) ([]models.Doctor, error) {
	return s.doctors.Find(ctx, bson.M{"category": category})
}

func (s *IdentityService) UpdateDoctor(ctx context.Context, email string, p DoctorPatch) (store.UpdateResult, error) {
	fields := setFields{}
	fields.str("institute", p.Institute)
	fields.str("category", p.Category)
	fields.str("qualification", p.Qualification)
	fields.val("fee", p.Fee)
	fields.str("url", p.URL)
	fields.str("bio", p.Bio)
	set, err := fields.patch()
	if err != nil {
		return store.UpdateResult{}, err
	}
	return s.doctors.UpdateOne(ctx, byEmail(email), set)
}

func (s *IdentityService) DeleteDoctor(ctx context.Context, id string) (store.DeleteResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return store.DeleteResult{}, err
	}
	return s.doctors.DeleteOne(ctx, byID(oid))
}
