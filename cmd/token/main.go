// Command token signs an access token with the API's secret, for service
// accounts and local testing.
//
//	go run ./cmd/token -company <tenant-id> -user <user-id>
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/valstrz/payroll-engine/internal/config"
	"github.com/valstrz/payroll-engine/internal/pkg/jwt"
)

func main() {
	companyID := flag.String("company", "", "tenant (company) id")
	userID := flag.String("user", "", "acting user id, empty for the system actor")
	flag.Parse()

	if *companyID == "" {
		fmt.Fprintln(os.Stderr, "-company is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).GenerateAccessToken(*userID, *companyID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error signing token:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
}
