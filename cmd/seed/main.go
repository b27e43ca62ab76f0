package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/oksasatya/go-recipe-api/config"
	"github.com/oksasatya/go-recipe-api/pkg/helpers"
)

var (
	demoTags        = []string{"Vegan", "Dessert", "Breakfast"}
	demoIngredients = []string{"Salt", "Flour", "Eggs", "Butter"}
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@example.com"
	password := "password123"
	name := "Demo User"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, name)
		VALUES ($1, $2, $3)
		ON CONFLICT ((lower(email))) DO UPDATE SET name = EXCLUDED.name, updated_at = now()
		RETURNING id
	`, email, hash, name).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s name=%s password=%s\n", id, email, name, password)

	for _, t := range demoTags {
		if err := ensureNamed(db, "tags", id, t); err != nil {
			log.Fatalf("failed to seed tag %q: %v", t, err)
		}
	}
	for _, i := range demoIngredients {
		if err := ensureNamed(db, "ingredients", id, i); err != nil {
			log.Fatalf("failed to seed ingredient %q: %v", i, err)
		}
	}
	fmt.Printf("seeded %d tags and %d ingredients\n", len(demoTags), len(demoIngredients))
}

// ensureNamed inserts (user_id, name) into table unless the owner already has that name.
func ensureNamed(db *sql.DB, table, ownerID, name string) error {
	_, err := db.Exec(`
		INSERT INTO `+table+` (user_id, name)
		SELECT $1, $2
		WHERE NOT EXISTS (SELECT 1 FROM `+table+` WHERE user_id = $1 AND name = $2)
	`, ownerID, name)
	return err
}
