package main

import (
	"context"
	"log"
	"time"

	"splitledger-backend/cache"
	"splitledger-backend/config"
	"splitledger-backend/database"
	"splitledger-backend/ledger"
	"splitledger-backend/models"
	"splitledger-backend/repository"
	"splitledger-backend/services"
)

const (
	alice   = "d5a2089c-e39a-4b62-a973-778f6729323d"
	bob     = "38c072a2-43f9-42b9-b603-6061c49d5c2d"
	charlie = "ad655801-23a9-4a33-8695-81d4426604fb"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	ctx := context.Background()
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Starting database seeding...")

	if err := clearDatabase(ctx, db); err != nil {
		log.Fatalf("Failed to clear database: %v", err)
	}
	if err := seedUsers(ctx, db); err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}
	log.Println("✓ Seeded users")

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	settlementRepo := repository.NewSettlementRepository(db)
	noCache := cache.NewInMemoryCache(time.Minute)

	groups := services.NewGroupService(groupRepo, userRepo, db)
	expenses := services.NewExpenseService(expenseRepo, groupRepo, userRepo, noCache, db)
	settlements := services.NewSettlementService(settlementRepo, groupRepo, userRepo, noCache, db)

	trip, err := groups.Create(ctx, alice, &models.CreateGroupRequest{
		Name:        "Lisbon trip",
		Description: "Long weekend in Lisbon",
		Type:        models.GroupTypeTrip,
		MemberIDs:   []string{bob, charlie},
	})
	if err != nil {
		log.Fatalf("Failed to seed group: %v", err)
	}
	log.Printf("✓ Seeded group %s", trip.ID)

	n, err := seedExpenses(ctx, expenses, trip.ID)
	if err != nil {
		log.Fatalf("Failed to seed expenses: %v", err)
	}
	log.Printf("✓ Seeded %d expenses", n)

	if _, err := settlements.Record(ctx, bob, &models.CreateSettlementRequest{
		ReceiverID: alice,
		Amount:     ledger.Amount("20"),
	}); err != nil {
		log.Fatalf("Failed to seed settlement: %v", err)
	}
	log.Println("✓ Seeded 1 settlement")

	log.Println("✓ Database seeding completed successfully!")
}

func clearDatabase(ctx context.Context, db *database.DB) error {
	_, err := db.Pool.Exec(ctx, `TRUNCATE settlements, expense_splits, expenses, group_members, groups, users CASCADE`)
	return err
}

func seedUsers(ctx context.Context, db *database.DB) error {
	return db.WithTx(ctx, func(q database.Querier) error {
		users := []struct{ id, email, name string }{
			{alice, "alice@example.com", "Alice"},
			{bob, "bob@example.com", "Bob"},
			{charlie, "charlie@example.com", "Charlie"},
		}
		for _, u := range users {
			if _, err := q.Exec(ctx, `INSERT INTO users (id, email, name) VALUES ($1, $2, $3)`, u.id, u.email, u.name); err != nil {
				return err
			}
		}
		return nil
	})
}

func seedExpenses(ctx context.Context, svc services.ExpenseService, tripID string) (int, error) {
	trip := tripID
	day := func(d int) *time.Time {
		t := time.Date(2025, time.March, d, 19, 0, 0, 0, time.UTC)
		return &t
	}
	split := func(userID, amount string) models.SplitRequest {
		return models.SplitRequest{UserID: userID, Amount: ledger.Amount(amount)}
	}

	reqs := []struct {
		caller string
		req    models.CreateExpenseRequest
	}{
		{alice, models.CreateExpenseRequest{
			Description: "Dinner", TotalAmount: ledger.Amount("100"), Date: day(1),
			Splits: []models.SplitRequest{split(alice, "50"), split(bob, "50")},
		}},
		{charlie, models.CreateExpenseRequest{
			Description: "Concert tickets", TotalAmount: ledger.Amount("30"), Date: day(3),
			Splits: []models.SplitRequest{split(charlie, "15"), split(alice, "15")},
		}},
		{alice, models.CreateExpenseRequest{
			GroupID: &trip, Description: "Hotel", TotalAmount: ledger.Amount("300"), Date: day(5),
			Splits: []models.SplitRequest{split(alice, "100"), split(bob, "100"), split(charlie, "100")},
		}},
		{bob, models.CreateExpenseRequest{
			GroupID: &trip, Description: "Taxi", TotalAmount: ledger.Amount("10"), Date: day(6),
			Splits: []models.SplitRequest{split(alice, "3.33"), split(bob, "3.33"), split(charlie, "3.34")},
		}},
	}

	for _, r := range reqs {
		if _, err := svc.Create(ctx, r.caller, &r.req); err != nil {
			return 0, err
		}
	}
	return len(reqs), nil
}
