package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"
	"max.ks1230/expenses-api/internal/config"
	"max.ks1230/expenses-api/internal/model/auth"
	"max.ks1230/expenses-api/internal/model/customerr"
	"max.ks1230/expenses-api/internal/model/storage"
)

const (
	defaultSQLitePath = "data/expenses.db"
	minPasswordLength = 6
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	email := fs.String("email", "", "Email of the new user")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	dbPath := fs.String("db", "", "Path to the SQLite database (default $SQLITE_PATH or "+defaultSQLitePath+")")
	dsn := fs.String("dsn", "", "Postgres DSN (default $DATABASE_DSN when -db is not set)")
	cost := fs.Int("cost", 10, "bcrypt cost")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		fmt.Fprintln(stdout, "Usage: adduser -email <email> [-password <password>] [-db <path> | -dsn <dsn>]")
		fs.PrintDefaults()
		return errors.New("missing required flags: email")
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return errors.Wrap(err, "failed to read password")
		}
		fmt.Fprintln(stdout)
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password cannot be empty")
	}
	if len(password) < minPasswordLength {
		return errors.Errorf("password must be at least %d characters", minPasswordLength)
	}

	db, err := storage.Open(storageConfig(*dbPath, *dsn))
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer db.Close()

	// The CLI never logs in, so the token codec is unused.
	service := auth.NewService(db, auth.NewBcryptHasher(*cost), nil)
	summary, err := service.Register(context.Background(), *email, password)
	if errors.Is(err, customerr.ErrDuplicateEmail) {
		return errors.Errorf("user %s already exists", *email)
	}
	if err != nil {
		return errors.Wrap(err, "failed to create user")
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %s\n", summary.Email, summary.ID)
	return nil
}

// storageConfig prefers explicit flags over the environment.
func storageConfig(dbPath, dsn string) *config.StorageConfig {
	if dsn == "" && dbPath == "" {
		dsn = os.Getenv("DATABASE_DSN")
	}
	if dsn != "" {
		return &config.StorageConfig{
			DriverName: config.DriverPostgres,
			Postgres:   config.PostgresConfig{RawDSN: dsn},
			MaxConns:   1,
		}
	}
	if dbPath == "" {
		dbPath = os.Getenv("SQLITE_PATH")
	}
	if dbPath == "" {
		dbPath = defaultSQLitePath
	}
	return &config.StorageConfig{DriverName: config.DriverSQLite, SQLitePath: dbPath}
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
