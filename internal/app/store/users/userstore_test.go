package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/homeandown/estatehub/internal/app/store/users"
	"github.com/homeandown/estatehub/internal/app/system/indexes"
	"github.com/homeandown/estatehub/internal/domain/models"
	"github.com/homeandown/estatehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create_Agent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := models.User{
		FirstName:   "  Asha ",
		LastName:    "Rao",
		Email:       "Asha@Example.com",
		PhoneNumber: "+91 98765 43210",
		UserType:    "Agent",
	}

	created, err := store.Create(ctx, user, "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.FirstName != "Asha" || created.Email != "asha@example.com" {
		t.Errorf("expected normalized name/email, got %q %q", created.FirstName, created.Email)
	}
	if created.PhoneNumber != "+919876543210" {
		t.Errorf("PhoneNumber = %q, want +919876543210", created.PhoneNumber)
	}
	if created.FullNameCI == "" {
		t.Error("expected FullNameCI to be set")
	}
	if created.Status != models.StatusActive {
		t.Errorf("expected status 'active', got %q", created.Status)
	}
	if created.VerificationStatus != models.VerificationPending {
		t.Errorf("expected agents to start pending verification, got %q", created.VerificationStatus)
	}
	if len(created.CustomID) != len("AGT-12345678") || created.CustomID[:4] != "AGT-" {
		t.Errorf("CustomID = %q, want AGT-XXXXXXXX", created.CustomID)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_InvalidUserType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.User{FirstName: "X", Email: "x@example.com", UserType: "landlord"}, "")
	if err == nil {
		t.Fatal("expected error for invalid user type")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	user1 := models.User{FirstName: "User", LastName: "One", Email: "duplicate@example.com", UserType: "admin"}
	if _, err := store.Create(ctx, user1, ""); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	user2 := models.User{FirstName: "User", LastName: "Two", Email: "DUPLICATE@example.com", UserType: "buyer"}
	_, err := store.Create(ctx, user2, "")
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_Authenticate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.User{FirstName: "Admin", Email: "admin@example.com", UserType: "admin"}, "s3cret-pass"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	u, err := store.Authenticate(ctx, "ADMIN@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if u.UserType != models.UserTypeAdmin {
		t.Errorf("UserType = %q, want admin", u.UserType)
	}

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "admin@example.com", "nope"},
		{"unknown email", "ghost@example.com", "s3cret-pass"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Authenticate(ctx, tt.email, tt.password); !errors.Is(err, userstore.ErrInvalidCredentials) {
				t.Errorf("Authenticate() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestStore_Authenticate_Inactive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.User{FirstName: "Old", Email: "old@example.com", UserType: "buyer", Status: "inactive"}, "pw-123456"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Authenticate(ctx, "old@example.com", "pw-123456"); !errors.Is(err, userstore.ErrInvalidCredentials) {
		t.Errorf("expected inactive user to be rejected, got %v", err)
	}
}

func TestStore_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "Bina", "Buyer", "b@example.com", models.UserTypeBuyer)
	fixtures.CreateUser(ctx, "Sara", "Seller", "s@example.com", models.UserTypeSeller)
	fixtures.CreateAgent(ctx, "Arun", "Agent", "a@example.com")

	all, err := store.List(ctx, userstore.ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len(List()) = %d, want 3", len(all))
	}

	sellers, err := store.List(ctx, userstore.ListFilter{UserType: models.UserTypeSeller})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sellers) != 1 || sellers[0].FirstName != "Sara" {
		t.Errorf("List(seller) = %+v, want Sara", sellers)
	}

	agents, err := store.ListAssignableAgents(ctx)
	if err != nil {
		t.Fatalf("ListAssignableAgents failed: %v", err)
	}
	if len(agents) != 1 || agents[0].FirstName != "Arun" {
		t.Errorf("ListAssignableAgents() = %+v, want Arun", agents)
	}
}

func TestStore_UpdateAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Bina", "Buyer", "b@example.com", models.UserTypeBuyer)

	updated, err := store.Update(ctx, u.ID, userstore.Update{
		FirstName: "Bina",
		LastName:  "Kapoor",
		Email:     "bina@example.com",
		UserType:  "seller",
		Status:    "active",
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.LastName != "Kapoor" || updated.UserType != models.UserTypeSeller {
		t.Errorf("Update() = %+v", updated)
	}

	if _, err := store.Update(ctx, primitive.NewObjectID(), userstore.Update{UserType: "buyer", Status: "active"}); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("Update(unknown) error = %v, want ErrNoDocuments", err)
	}

	n, err := store.Delete(ctx, u.ID)
	if err != nil || n != 1 {
		t.Errorf("Delete() = %d, %v; want 1, nil", n, err)
	}
}

func TestStore_Refs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateAgent(ctx, "Arun", "Agent", "a@example.com")
	refs, err := store.Refs(ctx, []primitive.ObjectID{a.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Refs failed: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("len(Refs()) = %d, want 1", len(refs))
	}
	if got := refs[a.ID].FullName(); got != "Arun Agent" {
		t.Errorf("FullName() = %q, want Arun Agent", got)
	}
}

func TestFetcher(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Bina", "Buyer", "b@example.com", models.UserTypeBuyer)
	f := userstore.NewFetcher(db)

	su := f.FetchUser(ctx, u.ID.Hex())
	if su == nil || su.Role != models.UserTypeBuyer || su.Name != "Bina Buyer" {
		t.Errorf("FetchUser() = %+v", su)
	}
	if f.FetchUser(ctx, "bad") != nil {
		t.Error("expected nil for malformed id")
	}
}
