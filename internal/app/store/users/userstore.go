package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/homeandown/estatehub/internal/app/system/customid"
	"github.com/homeandown/estatehub/internal/app/system/normalize"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost used for password hashes.
const BcryptCost = 12

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrInvalidCredentials is returned by Authenticate for unknown emails, wrong passwords and inactive accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")

	errBadUserType = errors.New(`user_type must be "admin"|"agent"|"seller"|"buyer"`)
	errBadStatus   = errors.New(`status must be "active"|"inactive"|"pending"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListFilter narrows List. Empty fields do not constrain.
type ListFilter struct {
	UserType string
	Status   string
	Limit    int64
}

// List returns users, newest first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.User, error) {
	filter := bson.M{}
	if f.UserType != "" {
		filter["user_type"] = f.UserType
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAssignableAgents returns active, verified agents ordered by name.
func (s *Store) ListAssignableAgents(ctx context.Context) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"user_type":           models.UserTypeAgent,
		"status":              models.StatusActive,
		"verification_status": models.VerificationVerified,
	}, options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Refs loads the display subset of the given users, keyed by ID. Unknown
// IDs are absent from the map.
func (s *Store) Refs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.PersonRef, error) {
	out := make(map[primitive.ObjectID]*models.PersonRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"first_name": 1, "last_name": 1, "custom_id": 1, "agent_license_number": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out[u.ID] = u.Ref()
	}
	return out, cur.Err()
}

func validate(u models.User) error {
	switch u.UserType {
	case models.UserTypeAdmin, models.UserTypeAgent, models.UserTypeSeller, models.UserTypeBuyer:
	default:
		return errBadUserType
	}
	switch u.Status {
	case models.StatusActive, models.StatusInactive, models.StatusPending:
	default:
		return errBadStatus
	}
	return nil
}

// Create inserts a new user after normalizing & validating fields. A
// non-empty password is stored as a bcrypt hash.
func (s *Store) Create(ctx context.Context, u models.User, password string) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FirstName = normalize.Name(u.FirstName)
	u.LastName = normalize.Name(u.LastName)
	u.FullNameCI = text.Fold(u.FullName())
	u.Email = normalize.Email(u.Email)
	u.PhoneNumber = normalize.Phone(u.PhoneNumber)
	u.UserType = normalize.Lower(u.UserType)
	u.Status = normalize.Lower(u.Status)
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	if u.UserType == models.UserTypeAgent || u.UserType == models.UserTypeSeller {
		if u.VerificationStatus == "" {
			u.VerificationStatus = models.VerificationPending
		}
	}
	if u.CustomID == "" {
		prefix := customid.User
		if u.UserType == models.UserTypeAgent {
			prefix = customid.Agent
		}
		u.CustomID = customid.New(prefix)
	}
	if err := validate(u); err != nil {
		return models.User{}, err
	}

	if password != "" {
		hash, err := HashPassword(password)
		if err != nil {
			return models.User{}, err
		}
		u.PasswordHash = hash
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// Update holds the editable user fields.
type Update struct {
	FirstName          string
	LastName           string
	Email              string
	PhoneNumber        string
	UserType           string
	Status             string
	VerificationStatus string
	AgentLicenseNumber string
}

// Update rewrites the editable fields of a user. Returns
// mongo.ErrNoDocuments when id is unknown and ErrDuplicateEmail when the
// email belongs to another user.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (models.User, error) {
	u := models.User{
		FirstName:          normalize.Name(upd.FirstName),
		LastName:           normalize.Name(upd.LastName),
		Email:              normalize.Email(upd.Email),
		PhoneNumber:        normalize.Phone(upd.PhoneNumber),
		UserType:           normalize.Lower(upd.UserType),
		Status:             normalize.Lower(upd.Status),
		VerificationStatus: normalize.Lower(upd.VerificationStatus),
		AgentLicenseNumber: upd.AgentLicenseNumber,
	}
	if err := validate(u); err != nil {
		return models.User{}, err
	}

	set := bson.M{
		"first_name":           u.FirstName,
		"last_name":            u.LastName,
		"full_name_ci":         text.Fold(u.FullName()),
		"email":                u.Email,
		"phone_number":         u.PhoneNumber,
		"user_type":            u.UserType,
		"status":               u.Status,
		"verification_status":  u.VerificationStatus,
		"agent_license_number": u.AgentLicenseNumber,
		"updated_at":           time.Now().UTC(),
	}
	var out models.User
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return out, nil
}

// SetVerification changes a user's verification status.
func (s *Store) SetVerification(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"verification_status": status,
		"updated_at":          time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a user. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EmailExistsForOther checks if an email already exists for a user other than the given ID.
func (s *Store) EmailExistsForOther(ctx context.Context, email string, excludeID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"email": normalize.Email(email),
		"_id":   bson.M{"$ne": excludeID},
	}).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// Authenticate checks an email/password pair and returns the active user.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u.PasswordHash == "" || u.Status != models.StatusActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// HashPassword hashes a password using bcrypt with BcryptCost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
