package main

import (
	"context"
	"fmt"
	"log"

	"splitledger-backend/config"
	"splitledger-backend/database"
	"splitledger-backend/ledger"
	"splitledger-backend/models"
	"splitledger-backend/repository"
)

// Prints every user with their direct net balance.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	expenseRepo := repository.NewExpenseRepository(db)
	settlementRepo := repository.NewSettlementRepository(db)

	rows, err := db.Pool.Query(ctx, "SELECT id, email, name FROM users ORDER BY email ASC")
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name); err != nil {
			log.Fatal(err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		log.Fatal(err)
	}

	fmt.Println("Users in Database:")
	fmt.Println("------------------")
	for _, u := range users {
		expenses, err := expenseRepo.GetDirectByUserID(ctx, u.ID)
		if err != nil {
			log.Fatalf("Loading expenses for %s: %v", u.Email, err)
		}
		settlements, err := settlementRepo.GetDirect(ctx, u.ID, "")
		if err != nil {
			log.Fatalf("Loading settlements for %s: %v", u.Email, err)
		}
		d := ledger.ComputeDashboardBalances(u.ID, ledger.Direct, models.ExpensesToLedger(expenses), models.SettlementsToLedger(settlements))
		fmt.Printf("ID: %s | Email: %-20s | Name: %-10s | Net: %s\n", u.ID, u.Email, u.Name, d.TotalBalance.StringFixed(2))
	}
}
