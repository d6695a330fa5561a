// cmd/seed creates the first ADMIN usuario so someone can log in and invite
// the rest of the staff. The identity-provider account is linked by mail on
// its first authenticated request.
//
// Uso: SEED_ADMIN_MAIL=admin@donnildo.com go run ./cmd/seed
package main

import (
	"context"
	"os"
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/config"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/infra"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/repository"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	// Seeding always needs the lookup tables in place.
	cfg.DBAutoMigrate = true

	db, err := infra.NewDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	mail := getEnv("SEED_ADMIN_MAIL", "admin@donnildo.com")
	nombre := getEnv("SEED_ADMIN_NOMBRE", "Administrador")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := repository.NewUsuarioRepository(db)
	rol, err := repo.FindRolByNombre(ctx, model.RolAdmin)
	if err != nil {
		log.Fatal().Err(err).Msg("rol ADMIN not found")
	}

	created, err := repo.CreateIfAbsent(ctx, &model.Usuario{
		Nombre: nombre,
		Mail:   mail,
		Estado: model.UsuarioActivo,
		RolID:  rol.ID,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed admin failed")
	}
	if created {
		log.Info().Str("mail", mail).Msg("admin usuario created")
	} else {
		log.Info().Str("mail", mail).Msg("admin usuario already present")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
