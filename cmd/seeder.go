package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpg "gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pflegewerk/lohnmonitor/internal"
	"github.com/pflegewerk/lohnmonitor/internal/auth"
	"github.com/pflegewerk/lohnmonitor/internal/settings"
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

		db, err := openSeedDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			for _, table := range []string{"notifications", "audit_logs", "employees", "users", "settings"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		seedUsers(db, cfg.Security.BCryptCost)
		seedSettings(db)
		seedEmployees(db)
	},
}

func openSeedDB(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	if cfg.Driver == "sqlite" {
		return gorm.Open(gormsqlite.Open(cfg.Source), &gorm.Config{})
	}
	return gorm.Open(gormpg.Open(cfg.Source), &gorm.Config{})
}

func seedUsers(db *gorm.DB, bcryptCost int) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcryptCost)

	accounts := []struct {
		Email string
		Name  string
		Role  string
	}{
		{"admin@pflegewerk.de", "Systemadministration", auth.RoleAdmin},
		{"personal@pflegewerk.de", "Personalabteilung", auth.RoleHR},
		{"leitung@pflegewerk.de", "Bereichsleitung", auth.RoleViewer},
	}

	for _, a := range accounts {
		var exists int
		row := db.Raw("SELECT 1 FROM users WHERE email = ?", a.Email).Row()
		if err := row.Scan(&exists); err == nil {
			fmt.Println("user already exists:", a.Email)
			continue
		}

		if err := db.Exec(
			"INSERT INTO users (email, name, role, password_hash, active, created_at, updated_at) VALUES (?, ?, ?, ?, true, now(), now())",
			a.Email, a.Name, a.Role, string(hash)).Error; err != nil {
			log.Fatalf("failed to insert user %s: %v", a.Email, err)
		}
		fmt.Println("Seeded user:", a.Email)
	}
}

func seedSettings(db *gorm.DB) {
	defaults := map[string]string{
		settings.KeyAlarmThreshold:       "40",
		settings.KeyReferenceWeeklyHours: "40",
		settings.KeyCompanyName:          "Pflegewerk GmbH",
		settings.KeyCompanyAddress:       "Musterstraße 1, 12345 Berlin",
	}

	for key, value := range defaults {
		var exists int
		row := db.Raw("SELECT 1 FROM settings WHERE key = ?", key).Row()
		if err := row.Scan(&exists); err == nil {
			continue
		}
		if err := db.Exec(
			"INSERT INTO settings (key, value, updated_at) VALUES (?, ?, now())",
			key, value).Error; err != nil {
			log.Fatalf("failed to insert setting %s: %v", key, err)
		}
		fmt.Println("Seeded setting:", key)
	}
}

func seedEmployees(db *gorm.DB) {
	now := time.Now()
	demo := []struct {
		PN         string
		Name       string
		Department string
		PayGroup   string
		HireDate   time.Time
		Step       int
		Hours      float64
		Rate       float64
		Allowances string
	}{
		// promotion due soon: lands in the alarm window
		{"PW-0101", "Anna Beispiel", "Pflege", "E5", now.AddDate(-1, 0, 25), 1, 40, 18.50, `{"gruppe":50,"schicht":75}`},
		// mid-career, next step far out
		{"PW-0102", "Bruno Muster", "Pflege", "E6", now.AddDate(-4, 0, 0), 3, 30, 21.00, `{"schicht":75,"tl100":true}`},
		// part-time with team-lead bonus
		{"PW-0103", "Clara Probe", "Verwaltung", "E4", now.AddDate(-2, -6, 0), 2, 20, 17.25, `{"gruppe":50,"tl150":true}`},
		// long service, terminal step
		{"PW-0104", "Dieter Demo", "Pflege", "E7", now.AddDate(-31, 0, 0), 6, 40, 24.75, `{}`},
	}

	for _, e := range demo {
		var exists int
		row := db.Raw("SELECT 1 FROM employees WHERE personnel_number = ?", e.PN).Row()
		if err := row.Scan(&exists); err == nil {
			fmt.Println("employee already exists:", e.PN)
			continue
		}

		if err := db.Exec(
			`INSERT INTO employees (personnel_number, name, email, department, pay_group, hire_date, current_step, weekly_hours, hourly_rate, allowances, active, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, true, now(), now())`,
			e.PN, e.Name, "", e.Department, e.PayGroup, e.HireDate.Format("2006-01-02"),
			e.Step, e.Hours, e.Rate, e.Allowances).Error; err != nil {
			log.Fatalf("failed to insert employee %s: %v", e.PN, err)
		}
		fmt.Println("Seeded employee:", e.PN)
	}
}
