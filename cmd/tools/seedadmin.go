package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"

	"campus-assets-api/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/crypto/bcrypt"
)

// seedadmin creates (or resets) an approved admin account so a fresh
// deployment has someone who can log in and approve registrations.
func main() {
	var (
		email    = flag.String("email", "", "Admin email address")
		password = flag.String("password", "", "Admin password (min 8 characters)")
		fullName = flag.String("name", "Inventory Administrator", "Admin display name")
	)
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("Both -email and -password are required")
	}
	if len(*password) < 8 {
		log.Fatal("Password must be at least 8 characters")
	}

	cfg := config.Load()
	if cfg.DBDSN == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	db, err := sql.Open("pgx", cfg.DBDSN)
	if err != nil {
		log.Fatal("Failed to open database connection:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	var id int64
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, full_name, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, 'admin', 'approved', now(), now())
		ON CONFLICT (email) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    full_name = EXCLUDED.full_name,
		    role = 'admin',
		    status = 'approved',
		    updated_at = now()
		RETURNING id`,
		*email, string(hash), *fullName).Scan(&id)
	if err != nil {
		log.Fatal("Failed to seed admin user:", err)
	}

	fmt.Printf("Admin user %s ready (id %d)\n", *email, id)
}
