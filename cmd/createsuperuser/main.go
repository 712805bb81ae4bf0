// Command createsuperuser provisions an account with staff and superuser
// rights.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"lemari/internal/config"
	"lemari/internal/database"
	"lemari/internal/repositories"
	"lemari/internal/services"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("createsuperuser: %v", err)
	}
}

func run(args []string, out io.Writer) error {
	flags := pflag.NewFlagSet("createsuperuser", pflag.ContinueOnError)
	flags.SetOutput(out)
	username := flags.String("username", "", "username of the new superuser")
	email := flags.String("email", "", "email address of the new superuser")
	password := flags.String("password", "", "password of the new superuser")
	country := flags.String("country", "", "country of the new superuser")
	flags.String("dsn", "", "database DSN (overrides DATABASE_DSN)")
	flags.String("driver", "", "database driver, sqlite or postgres (overrides DB_DRIVER)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	v := config.New()
	if err := v.BindPFlag("DATABASE_DSN", flags.Lookup("dsn")); err != nil {
		return err
	}
	if err := v.BindPFlag("DB_DRIVER", flags.Lookup("driver")); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	if *username == "" || *email == "" || *password == "" {
		flags.PrintDefaults()
		return errors.New("username, email and password are required")
	}

	db, err := database.Open(cfg.DBDriver, cfg.DBDSN, cfg.DBLogLevel)
	if err != nil {
		return err
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		return err
	}

	identity := services.NewIdentityService(
		repositories.NewGORMUserRepository(db),
		repositories.NewGORMTokenRepository(db),
		cfg.JWTSecret, cfg.BcryptCost, nil,
	)
	user, err := identity.CreateSuperuser(services.RegisterInput{
		Username:  *username,
		Email:     *email,
		Country:   *country,
		Password:  *password,
		Password2: *password,
	})
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("invalid superuser: %s", describe(verr))
		}
		return err
	}

	fmt.Fprintf(out, "Superuser '%s' created successfully.\n", user.Username)
	return nil
}

func describe(verr *services.ValidationError) string {
	fields := make([]string, 0, len(verr.Fields))
	for field := range verr.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+verr.Fields[field])
	}
	return strings.Join(parts, "; ")
}
