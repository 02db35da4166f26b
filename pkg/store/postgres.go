package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq" // PostgreSQL driver

	"mtlsdemo/pkg/config"
	"mtlsdemo/pkg/log"
	"mtlsdemo/pkg/models"
)

// postgresSSLMode makes lib/pq present the SVID as client certificate and verify the server
// against the trust bundle. Hostname checks are skipped: SVIDs carry URI SANs, not DNS names.
const postgresSSLMode = "require"

// PostgresDSN builds a lib/pq key/value connection string from cfg.
func PostgresDSN(cfg config.DatabaseConfig) string {
	pairs := []struct{ key, value string }{
		{"host", cfg.Host},
		{"port", cfg.Port},
		{"user", cfg.User},
		{"password", cfg.Password},
		{"dbname", cfg.Name},
		{"sslmode", postgresSSLMode},
		{"sslcert", cfg.SSLCert},
		{"sslkey", cfg.SSLKey},
		{"sslrootcert", cfg.SSLRootCA},
	}

	parts := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		if pair.value == "" {
			continue
		}
		parts = append(parts, pair.key+"="+quoteDSNValue(pair.value))
	}
	return strings.Join(parts, " ")
}

// quoteDSNValue quotes values containing spaces, quotes or backslashes.
func quoteDSNValue(value string) string {
	if !strings.ContainsAny(value, ` '\`) {
		return value
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
	return "'" + escaped + "'"
}

// OpenPostgres connects with the client certificate written by spiffe-helper and verifies the
// connection with a ping.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig, id Identity) (*SQLStore, error) {
	log.ConnectionAttempt(models.PatternSpiffeHelper, cfg.Host, id.SPIFFEID)

	database, err := sql.Open("postgres", PostgresDSN(cfg))
	if err != nil {
		log.ConnectionFailure(models.PatternSpiffeHelper, cfg.Host, id.SPIFFEID, err)
		return nil, fmt.Errorf("%w: failed to open database connection: %w", ErrDatabaseError, err)
	}

	configurePool(database, cfg)

	if err := database.PingContext(ctx); err != nil {
		_ = database.Close()
		log.ConnectionFailure(models.PatternSpiffeHelper, cfg.Host, id.SPIFFEID, err)
		return nil, fmt.Errorf("%w: failed to ping database: %w", ErrDatabaseError, err)
	}

	log.ConnectionSuccess(models.PatternSpiffeHelper, cfg.Host, id.SPIFFEID, id.PeerSPIFFEID)

	return &SQLStore{db: database, driver: config.DriverPostgres}, nil
}
