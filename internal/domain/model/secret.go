package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// DefaultPostgresPort is used when a secret bundle omits the port.
const DefaultPostgresPort = 5432

// ErrMalformedSecret indicates the secret payload could not be turned into a SecretBundle.
var ErrMalformedSecret = errors.New("malformed secret")

// SecretBundle holds database credentials fetched from the secret store for
// the duration of a single connection. It is never cached or persisted.
type SecretBundle struct {
	Host     string
	Port     int
	Username string
	Password string
	DBName   string
}

// String redacts the password so bundles can be logged safely.
func (b SecretBundle) String() string {
	return fmt.Sprintf("%s@%s:%d/%s", b.Username, b.Host, b.Port, b.DBName)
}

// secretPayload mirrors the JSON layout written by RDS-managed secrets.
// Extra keys such as "engine" or "dbInstanceIdentifier" are ignored.
type secretPayload struct {
	Host     string          `json:"host"`
	Port     json.RawMessage `json:"port"`
	Username string          `json:"username"`
	Password string          `json:"password"`
	DBName   string          `json:"dbname"`
}

// ParseSecretBundle decodes a JSON secret string. The port may be a JSON
// number or a numeric string. host, username and dbname are required.
func ParseSecretBundle(raw string) (SecretBundle, error) {
	var p secretPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return SecretBundle{}, fmt.Errorf("%w: %w", ErrMalformedSecret, err)
	}

	port, err := parsePort(p.Port)
	if err != nil {
		return SecretBundle{}, fmt.Errorf("%w: %w", ErrMalformedSecret, err)
	}

	b := SecretBundle{
		Host:     p.Host,
		Port:     port,
		Username: p.Username,
		Password: p.Password,
		DBName:   p.DBName,
	}

	switch {
	case b.Host == "":
		return SecretBundle{}, fmt.Errorf("%w: missing host", ErrMalformedSecret)
	case b.Username == "":
		return SecretBundle{}, fmt.Errorf("%w: missing username", ErrMalformedSecret)
	case b.DBName == "":
		return SecretBundle{}, fmt.Errorf("%w: missing dbname", ErrMalformedSecret)
	}

	return b, nil
}

func parsePort(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return DefaultPostgresPort, nil
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, fmt.Errorf("port: %w", err)
		}
	}

	port, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("port %s is not an integer", raw)
	}
	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range", port)
	}
	return port, nil
}
