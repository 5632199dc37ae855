package bunnytab

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables recognized by LoadCredentials.
const (
	EnvZone          = "BUNNY_STORAGE_ZONE"
	EnvReadPassword  = "BUNNY_PASS_READ"
	EnvWritePassword = "BUNNY_PASS_WRITE"
	EnvRegion        = "BUNNY_STORAGE_REGION"
	EnvEndpoint      = "BUNNY_STORAGE_ENDPOINT"
)

var (
	// ErrMissingCredentialsFile means an explicitly named env file
	// does not exist.
	ErrMissingCredentialsFile = errors.New("bunnytab: credentials file not found")

	// ErrMissingKey means a required credential is absent from the
	// environment after loading.
	ErrMissingKey = errors.New("bunnytab: missing credential")
)

// Credentials identifies one storage zone. Passed explicitly to New so
// a process can hold independently configured clients; nothing here is
// global state.
type Credentials struct {
	// Zone is the storage zone name.
	Zone string

	// ReadPassword grants read-only access. Optional when
	// WritePassword is set.
	ReadPassword string

	// WritePassword grants read and write access.
	WritePassword string

	// Region selects the storage region host prefix ("" is the
	// provider default).
	Region string

	// Endpoint overrides the storage endpoint URL entirely.
	Endpoint string
}

// LoadCredentials reads zone credentials from the environment. With a
// path argument that env file must exist and is loaded first; without
// one, a .env in the working directory is loaded best-effort and the
// process environment wins either way.
//
// The zone and at least one password are required; anything missing is
// reported as ErrMissingKey before any network activity can happen.
func LoadCredentials(path ...string) (Credentials, error) {
	switch len(path) {
	case 0:
		_ = godotenv.Load() // best-effort
	case 1:
		if err := godotenv.Load(path[0]); err != nil {
			if os.IsNotExist(err) {
				return Credentials{}, fmt.Errorf("%w: %q", ErrMissingCredentialsFile, path[0])
			}
			return Credentials{}, fmt.Errorf("bunnytab: load %q: %w", path[0], err)
		}
	default:
		return Credentials{}, fmt.Errorf("bunnytab: LoadCredentials takes at most one path, got %d", len(path))
	}

	creds := Credentials{
		Zone:          strings.TrimSpace(os.Getenv(EnvZone)),
		ReadPassword:  os.Getenv(EnvReadPassword),
		WritePassword: os.Getenv(EnvWritePassword),
		Region:        strings.TrimSpace(os.Getenv(EnvRegion)),
		Endpoint:      strings.TrimSpace(os.Getenv(EnvEndpoint)),
	}
	if err := creds.validate(); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

func (c Credentials) validate() error {
	if c.Zone == "" {
		return fmt.Errorf("%w: %s", ErrMissingKey, EnvZone)
	}
	if c.ReadPassword == "" && c.WritePassword == "" {
		return fmt.Errorf("%w: set %s or %s", ErrMissingKey, EnvReadPassword, EnvWritePassword)
	}
	return nil
}
