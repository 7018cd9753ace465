package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"art-market/config"
	"art-market/internal/model"
	dbPkg "art-market/pkg/db"
	"art-market/pkg/password"

	"golang.org/x/crypto/bcrypt"
)

// demoAccount describes one user inserted by the seed run.
type demoAccount struct {
	Name        string
	Email       string
	Password    string
	Role        string
	City        string
	DisplayName string // non-empty means an artist profile is created too
	Bio         string
}

var demoAccounts = []demoAccount{
	{Name: "Asha Nair", Email: "asha@example.com", Password: "password123", Role: "user", City: "Kochi"},
	{Name: "Ravi Iyer", Email: "ravi@example.com", Password: "password123", Role: "user", City: "Chennai"},
	{Name: "Meera Pillai", Email: "meera@example.com", Password: "password123", Role: "artist", City: "Kochi",
		DisplayName: "Meera Originals", Bio: "Watercolor portraits and custom commissions."},
	{Name: "Kiran Das", Email: "kiran@example.com", Password: "password123", Role: "artist", City: "Bengaluru",
		DisplayName: "Kiran Studio", Bio: "Acrylic landscapes, madhubani, wall murals."},
	{Name: "Devi Menon", Email: "devi@example.com", Password: "password123", Role: "artist", City: "Thrissur",
		DisplayName: "Devi Crafts", Bio: "Terracotta and handmade pottery."},
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func main() {
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	cfg := config.LoadConfig()

	if !*yes {
		fmt.Printf("This will DROP and recreate all tables in database %q and insert demo data.\n", cfg.Database.Database)
		if !confirm("Continue?") {
			fmt.Println("Aborted.")
			return
		}
	}

	db, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect database: %v\n", err)
		os.Exit(1)
	}
	defer dbPkg.CloseDB()

	tables := []interface{}{
		&model.Message{},
		&model.Conversation{},
		&model.Notification{},
		&model.Artist{},
		&model.User{},
	}
	if err := db.Migrator().DropTable(tables...); err != nil {
		fmt.Fprintf(os.Stderr, "drop tables: %v\n", err)
		os.Exit(1)
	}
	if err := dbPkg.AutoMigrate(
		&model.User{},
		&model.Artist{},
		&model.Message{},
		&model.Conversation{},
		&model.Notification{},
	); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	for _, acct := range demoAccounts {
		// demo credentials only, so the cheapest cost is fine
		hash, err := password.HashWithCost(acct.Password, bcrypt.MinCost)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hash password for %s: %v\n", acct.Email, err)
			os.Exit(1)
		}
		user := model.User{
			Name:         acct.Name,
			Email:        acct.Email,
			PasswordHash: hash,
			Role:         acct.Role,
			City:         acct.City,
		}
		if err := db.Create(&user).Error; err != nil {
			fmt.Fprintf(os.Stderr, "insert user %s: %v\n", acct.Email, err)
			os.Exit(1)
		}
		if acct.DisplayName != "" {
			artist := model.Artist{
				UserID:      user.ID,
				DisplayName: acct.DisplayName,
				Bio:         acct.Bio,
				City:        acct.City,
			}
			if err := db.Create(&artist).Error; err != nil {
				fmt.Fprintf(os.Stderr, "insert artist for %s: %v\n", acct.Email, err)
				os.Exit(1)
			}
		}
		fmt.Printf("created %-14s role=%-6s email=%s\n", acct.Name, acct.Role, acct.Email)
	}

	fmt.Printf("\nDone. %d demo accounts ready (password for all: password123).\n", len(demoAccounts))
}
