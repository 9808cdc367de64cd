package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"activity_log", "alerts", "grievances", "bills", "spending_controls", "budgets", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		users := []struct {
			ID         string
			Email      string
			Name       string
			Role       string
			Department string
			Phone      string
			Managed    string
		}{
			{"adm_1", "admin@xtractpay.dev", "Asha Admin", "admin", "Finance", "+15550100", "[]"},
			{"man_1", "mira@xtractpay.dev", "Mira Manager", "manager", "Engineering", "+15550101", `["emp_1","emp_2"]`},
			{"emp_1", "eko@xtractpay.dev", "Eko Employee", "employee", "Engineering", "+15550102", "[]"},
			{"emp_2", "tara@xtractpay.dev", "Tara Employee", "employee", "Engineering", "+15550103", "[]"},
		}

		for _, u := range users {
			var exists int
			row := db.Raw("SELECT 1 FROM users WHERE email = ?", u.Email).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Printf("user %s already exists, skipping\n", u.Email)
				continue
			}

			err := db.Exec(
				"INSERT INTO users (user_id, email, name, password_hash, role, department, phone_number, managed_employees, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?::jsonb, now(), now())",
				u.ID, u.Email, u.Name, string(hash), u.Role, u.Department, u.Phone, u.Managed,
			).Error
			if err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Email, err)
			}
			fmt.Println("Seeded user:", u.Email)
		}

		fmt.Println("Seeding complete. Default password for all users:", password)
	},
}
