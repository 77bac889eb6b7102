package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/Daviipontes/Dev-Web/internal/bootstrap"
	"github.com/Daviipontes/Dev-Web/pkg/account"
	"github.com/Daviipontes/Dev-Web/pkg/global"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	addUserCmd := flag.NewFlagSet("add-user", flag.ExitOnError)
	email := addUserCmd.String("email", "", "Email for the new admin")
	password := addUserCmd.String("password", "", "Password for the new admin")
	name := addUserCmd.String("name", "Administrator", "Display name")

	if len(os.Args) < 2 {
		fmt.Println("expected 'add-user' subcommand")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add-user":
		addUserCmd.Parse(os.Args[2:])
		if *email == "" || *password == "" {
			fmt.Println("email and password are required")
			addUserCmd.PrintDefaults()
			os.Exit(1)
		}
		if err := createAdmin(*email, *password, *name); err != nil {
			slog.Error("Failed to create admin", "email", *email, "error", err)
			os.Exit(1)
		}
	default:
		fmt.Println("expected 'add-user' subcommand")
		os.Exit(1)
	}
}

func createAdmin(email, password, name string) error {
	_ = godotenv.Load()

	cfg, err := global.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	ctx := context.Background()
	db, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	if _, err := account.NewService(db).CreateAdmin(ctx, email, password, name); err != nil {
		return err
	}

	slog.Info("Admin created", "email", email)
	return nil
}
