// Command rentdesk-token prints a signed session token for local testing
// against a rentdesk server sharing the same JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"

	"rentdesk/internal/auth"
	"rentdesk/internal/cli"
	"rentdesk/internal/log"
)

func main() {
	role := flag.String("role", string(auth.RoleLandlord), "session role: landlord or tenant")
	subject := flag.String("sub", "dev@rentdesk.local", "token subject")
	tenantID := flag.String("tenant", "", "tenant ID, required for tenant sessions")
	flag.Parse()

	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentAuth)

	token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL).
		Generate(*subject, auth.Role(*role), *tenantID)
	if err != nil {
		logger.Error("Failed to sign token", log.FieldError, err, log.FieldRole, *role)
		os.Exit(1)
	}
	fmt.Println(token)
}
