package testutil

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc interface{}) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert test %s: %v", coll, err)
	}
}

// CreateUser creates an active user of the given type.
func (f *Fixtures) CreateUser(ctx context.Context, first, last, email, userType string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		CustomID:   "USR-" + strings.ToUpper(primitive.NewObjectID().Hex()[18:]),
		FirstName:  first,
		LastName:   last,
		FullNameCI: text.Fold(first + " " + last),
		Email:      strings.ToLower(email),
		UserType:   userType,
		Status:     models.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateAgent creates an active, verified agent.
func (f *Fixtures) CreateAgent(ctx context.Context, first, last, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:                 primitive.NewObjectID(),
		CustomID:           "AGT-" + strings.ToUpper(primitive.NewObjectID().Hex()[18:]),
		FirstName:          first,
		LastName:           last,
		FullNameCI:         text.Fold(first + " " + last),
		Email:              strings.ToLower(email),
		UserType:           models.UserTypeAgent,
		Status:             models.StatusActive,
		VerificationStatus: models.VerificationVerified,
		AgentLicenseNumber: "LIC-" + first,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateProperty creates an active listing. amount is the price for SALE
// listings and the monthly rent for RENT listings.
func (f *Fixtures) CreateProperty(ctx context.Context, title, listingType string, amount float64, owner *primitive.ObjectID) models.Property {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Property{
		ID:           primitive.NewObjectID(),
		CustomID:     "PROP-" + strings.ToUpper(primitive.NewObjectID().Hex()[18:]),
		Title:        title,
		TitleCI:      text.Fold(title),
		PropertyType: "apartment",
		City:         "Hyderabad",
		ListingType:  listingType,
		Status:       models.StatusActive,
		OwnerID:      owner,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if listingType == models.ListingRent {
		p.MonthlyRent = &amount
	} else {
		p.Price = &amount
	}
	f.insert(ctx, "properties", p)
	return p
}

// CreateBooking creates a pending booking.
func (f *Fixtures) CreateBooking(ctx context.Context, propertyID, userID primitive.ObjectID, agentID *primitive.ObjectID) models.Booking {
	f.t.Helper()

	now := time.Now().UTC()
	b := models.Booking{
		ID:          primitive.NewObjectID(),
		PropertyID:  propertyID,
		UserID:      userID,
		AgentID:     agentID,
		BookingDate: now.AddDate(0, 0, 3).Format("2006-01-02"),
		BookingTime: "10:30",
		Status:      models.BookingPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "bookings", b)
	return b
}

// CreateInquiry creates a new inquiry.
func (f *Fixtures) CreateInquiry(ctx context.Context, name, email string, propertyID *primitive.ObjectID) models.Inquiry {
	f.t.Helper()

	now := time.Now().UTC()
	i := models.Inquiry{
		ID:         primitive.NewObjectID(),
		PropertyID: propertyID,
		Name:       name,
		Email:      email,
		Message:    "Is this still available?",
		Status:     models.InquiryNew,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.insert(ctx, "inquiries", i)
	return i
}

// CreateSellerProfile creates a seller profile with the given verification status.
func (f *Fixtures) CreateSellerProfile(ctx context.Context, userID primitive.ObjectID, business, status string) models.SellerProfile {
	f.t.Helper()

	now := time.Now().UTC()
	s := models.SellerProfile{
		ID:                 primitive.NewObjectID(),
		UserID:             userID,
		BusinessName:       business,
		VerificationStatus: status,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	f.insert(ctx, "seller_profiles", s)
	return s
}

// CreateNotification creates a notification. A non-nil stats marks it sent.
func (f *Fixtures) CreateNotification(ctx context.Context, title string, stats *models.NotificationStats) models.Notification {
	f.t.Helper()

	now := time.Now().UTC()
	n := models.Notification{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Message:   "Hello {{name}}",
		Type:      "info",
		Audience:  "all",
		Status:    models.NotificationDraft,
		CreatedAt: now,
	}
	if stats != nil {
		n.Status = models.NotificationSent
		n.Analytics = stats
		n.SentAt = &now
	}
	f.insert(ctx, "notifications", n)
	return n
}

// CreateAssignment creates an inquiry assignment with the given status.
func (f *Fixtures) CreateAssignment(ctx context.Context, inquiryID, agentID primitive.ObjectID, status string) models.Assignment {
	f.t.Helper()

	now := time.Now().UTC()
	a := models.Assignment{
		ID:         primitive.NewObjectID(),
		InquiryID:  inquiryID,
		AgentID:    agentID,
		Status:     status,
		AssignedAt: now,
		ExpiresAt:  now.Add(24 * time.Hour),
		UpdatedAt:  now,
	}
	f.insert(ctx, "agent_inquiry_assignments", a)
	return a
}

// CreateEarning records a month of agent commission.
func (f *Fixtures) CreateEarning(ctx context.Context, agentID primitive.ObjectID, year, month int, commission float64) models.Earning {
	f.t.Helper()

	e := models.Earning{
		ID:              primitive.NewObjectID(),
		AgentID:         agentID,
		Year:            year,
		Month:           month,
		TotalCommission: commission,
	}
	f.insert(ctx, "earnings", e)
	return e
}
