// Package main provides a CLI tool for seeding the database with
// initial data: the admin user and, optionally, a demo dataset.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"tradebook/internal/core/id"
	"tradebook/internal/infrastructure/storage/postgres"
	"tradebook/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := seedAdminUser(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	adminUsername := os.Getenv("ADMIN_USERNAME")
	if adminUsername == "" {
		adminUsername = "admin"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM sys_users WHERE username = $1 AND deleted_at IS NULL`,
		adminUsername,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "username", adminUsername, "user_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO sys_users (id, username, password_hash, full_name, is_active, is_admin, version)
		VALUES ($1, $2, $3, 'Administrator', true, true, 1)
	`, userID, adminUsername, string(passwordHash))
	if err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created", "username", adminUsername, "user_id", userID)
	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	// 1. Accounts: the cash boxes and bank accounts money moves between.
	accounts := []struct {
		code      string
		name      string
		aType     string
		holder    string
		isDefault bool
	}{
		{"AC-001", "A.R", "cash", "A.R", true},
		{"AC-002", "ABDUL", "cash", "Abdul", false},
		{"AC-003", "Current Account", "bank", "", false},
		{"AC-004", "UPI Collections", "upi", "", false},
	}

	for _, a := range accounts {
		var holder any
		if a.holder != "" {
			holder = a.holder
		}
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_accounts (id, code, name, type, holder, opening_balance, allow_overdraft, is_active, is_default, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, $4, $5, 0, true, true, $6, 1, false, '{}')
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, id.New(), a.code, a.name, a.aType, holder, a.isDefault)
		if err != nil {
			log.Warnw("failed to seed account", "name", a.name, "error", err)
		}
	}

	// 2. Stock points: shops, godowns, and the virtual direct point.
	stockPoints := []struct {
		code      string
		name      string
		pType     string
		address   string
		isDefault bool
	}{
		{"SP-001", "Shop1", "shop", "Main Road", true},
		{"SP-002", "Shop2", "shop", "Market Street", false},
		{"SP-003", "Godown", "godown", "Warehouse Lane", false},
		{"SP-004", "Direct Supply", "direct", "", false},
	}

	for _, p := range stockPoints {
		var address any
		if p.address != "" {
			address = p.address
		}
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_stock_points (id, code, name, type, address, threshold, is_active, is_default, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, $4, $5, 0, true, $6, 1, false, '{}')
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, id.New(), p.code, p.name, p.pType, address, p.isDefault)
		if err != nil {
			log.Warnw("failed to seed stock point", "name", p.name, "error", err)
		}
	}

	// 3. Products: the short SKU list a single-brand distributor moves.
	products := []struct {
		code         string
		name         string
		brand        string
		unit         string
		unitsPerPack int
		price        int64 // minor units
	}{
		{"PR-001", "Glucose Biscuit 100g", "Sunrise", "case", 120, 52000},
		{"PR-002", "Cream Biscuit 75g", "Sunrise", "case", 96, 64000},
		{"PR-003", "Salt Crackers 200g", "Sunrise", "case", 48, 72000},
		{"PR-004", "Rusk 300g", "Sunrise", "bag", 24, 48000},
	}

	for _, p := range products {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_products (id, code, name, brand, unit, units_per_pack, default_price, is_active, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, true, 1, false, '{}')
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, id.New(), p.code, p.name, p.brand, p.unit, p.unitsPerPack, p.price)
		if err != nil {
			log.Warnw("failed to seed product", "name", p.name, "error", err)
		}
	}

	// 4. Customers on the collection rounds.
	customers := []struct {
		code  string
		name  string
		area  string
		phone string
	}{
		{"CU-001", "Ravi Stores", "North Route", "+91 98000 00001"},
		{"CU-002", "Kumar Traders", "North Route", "+91 98000 00002"},
		{"CU-003", "Lakshmi Provision", "South Route", "+91 98000 00003"},
		{"CU-004", "City Mart", "South Route", ""},
	}

	for _, c := range customers {
		var phone any
		if c.phone != "" {
			phone = c.phone
		}
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_customers (id, code, name, phone, area, opening_balance, is_active, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, $4, $5, 0, true, 1, false, '{}')
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, id.New(), c.code, c.name, phone, c.area)
		if err != nil {
			log.Warnw("failed to seed customer", "name", c.name, "error", err)
		}
	}

	log.Info("demo data seeded successfully")
	return nil
}
