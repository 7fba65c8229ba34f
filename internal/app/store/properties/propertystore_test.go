package propertystore_test

import (
	"testing"

	propertystore "github.com/homeandown/estatehub/internal/app/store/properties"
	"github.com/homeandown/estatehub/internal/domain/models"
	"github.com/homeandown/estatehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func ptr(f float64) *float64 { return &f }

func TestStore_CreateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := propertystore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Sara", "Seller", "s@example.com", models.UserTypeSeller)

	created, err := store.Create(ctx, models.Property{
		Title:        " Sea  View ",
		PropertyType: "villa",
		City:         "Goa",
		ListingType:  "sale",
		Price:        ptr(7500000),
		OwnerID:      &owner.ID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Title != "Sea View" || created.ListingType != models.ListingSale {
		t.Errorf("Create() normalized = %q %q", created.Title, created.ListingType)
	}
	if created.Status != models.StatusActive {
		t.Errorf("Status = %q, want active", created.Status)
	}

	if _, err := store.Create(ctx, models.Property{Title: "Hill Flat", ListingType: "RENT", MonthlyRent: ptr(20000)}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	all, err := store.List(ctx, propertystore.ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len(List()) = %d, want 2", len(all))
	}

	var withOwner, without int
	for _, p := range all {
		if p.Owner != nil {
			withOwner++
			if p.Owner.FullName() != "Sara Seller" {
				t.Errorf("Owner = %q, want Sara Seller", p.Owner.FullName())
			}
		} else {
			without++
		}
	}
	if withOwner != 1 || without != 1 {
		t.Errorf("owners joined = %d, unassigned = %d; want 1, 1", withOwner, without)
	}

	rent, err := store.List(ctx, propertystore.ListFilter{ListingType: models.ListingRent})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(rent) != 1 || rent[0].Title != "Hill Flat" {
		t.Errorf("List(RENT) = %+v", rent)
	}
}

func TestStore_Create_Invalid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := propertystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Property{Title: "X", ListingType: "LEASE"}); err == nil {
		t.Error("expected error for bad listing type")
	}
	if _, err := store.Create(ctx, models.Property{Title: "  ", ListingType: "SALE"}); err == nil {
		t.Error("expected error for blank title")
	}
}

func TestStore_UpdateDeleteRefs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := propertystore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fixtures.CreateProperty(ctx, "Sea View", models.ListingSale, 100, nil)

	p.Title = "Sea View Deluxe"
	p.Price = ptr(200)
	updated, err := store.Update(ctx, p.ID, p)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != "Sea View Deluxe" || *updated.Price != 200 {
		t.Errorf("Update() = %+v", updated)
	}

	refs, err := store.Refs(ctx, []primitive.ObjectID{p.ID})
	if err != nil || refs[p.ID] == nil || refs[p.ID].Title != "Sea View Deluxe" {
		t.Errorf("Refs() = %v, %v", refs, err)
	}

	n, err := store.Delete(ctx, p.ID)
	if err != nil || n != 1 {
		t.Errorf("Delete() = %d, %v; want 1, nil", n, err)
	}
}
