// create_user da de alta un usuario del back-office (no hay registro público).
//
// Uso: go run ./cmd/create_user -email compta@example.fr -password '********' [-role ADMIN|USER]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jhoicas/factures-api/internal/application/auth"
	"github.com/jhoicas/factures-api/internal/application/dto"
	"github.com/jhoicas/factures-api/internal/domain"
	"github.com/jhoicas/factures-api/internal/infrastructure/postgres"
	"github.com/jhoicas/factures-api/pkg/config"
	"github.com/jhoicas/factures-api/pkg/logger"
)

func main() {
	email := flag.String("email", "", "email del usuario")
	password := flag.String("password", "", "password (mínimo 8 caracteres)")
	role := flag.String("role", "ADMIN", "rol: ADMIN o USER")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "warn"})

	in := dto.CreateUserRequest{
		Email:    strings.TrimSpace(*email),
		Password: *password,
		Role:     strings.ToUpper(strings.TrimSpace(*role)),
	}
	if err := dto.Validate(in); err != nil {
		fmt.Fprintf(os.Stderr, "Datos inválidos: %s\n", dto.ValidationMessage(err))
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(cfg.DB, log); err != nil {
			fmt.Fprintf(os.Stderr, "Migraciones: %v\n", err)
			os.Exit(1)
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	uc := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{Secret: cfg.JWT.Secret})
	user, err := uc.CreateUser(ctx, in)
	if err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			fmt.Fprintf(os.Stderr, "Ya existe un usuario con email %s\n", in.Email)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Crear usuario: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Usuario creado: %s (%s) id=%s\n", user.Email, user.Role, user.ID)
}
