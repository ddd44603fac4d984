package identity

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/InternBridge/internship-service/internal/config"
)

// Credentials is the material the provider client needs. It matches the JSON
// shape of a downloaded Casdoor application credential file.
type Credentials struct {
	Endpoint     string `json:"endpoint"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	Certificate  string `json:"certificate"`
	Organization string `json:"organization"`
	Application  string `json:"application"`
}

func (c *Credentials) complete() bool {
	return c != nil && c.Endpoint != "" && c.ClientID != "" && c.ClientSecret != ""
}

const (
	envCredentialsBase64 = "CASDOOR_CREDENTIALS_BASE64"
	envCredentialsPath   = "CASDOOR_CREDENTIALS_PATH"
	envCredentialsWrite  = "CASDOOR_CREDENTIALS_WRITE"
)

var defaultCredentialPaths = []string{
	"casdoor-credentials.json",
	"config/casdoor-credentials.json",
}

// LoadCredentials resolves provider credentials from the first usable source:
//
//  1. plain CASDOOR_* env vars (the config package already collected them)
//  2. CASDOOR_CREDENTIALS_BASE64: a base64-encoded JSON credential blob
//  3. CASDOOR_CREDENTIALS_PATH: a JSON credential file
//  4. the default file locations
//
// A located source that fails to parse is treated as unusable and the loader
// falls through to the next one; it never fails hard. When nothing works it
// returns nil plus the list of locations attempted, for diagnostics.
func LoadCredentials(cfg config.CasdoorConfig) (*Credentials, []string) {
	var tried []string

	if cred := fromConfig(cfg); cred.complete() {
		return cred, nil
	}

	if b64 := os.Getenv(envCredentialsBase64); b64 != "" {
		tried = append(tried, envCredentialsBase64+" (env)")
		if cred := parseBase64(b64); cred.complete() {
			maybePersist(cred)
			return cred, nil
		}
	}

	if path := os.Getenv(envCredentialsPath); path != "" {
		tried = append(tried, path)
		if cred := parseFile(path); cred.complete() {
			return cred, nil
		}
	} else {
		for _, path := range defaultCredentialPaths {
			tried = append(tried, path)
			if cred := parseFile(path); cred.complete() {
				return cred, nil
			}
		}
	}

	return nil, tried
}

func fromConfig(cfg config.CasdoorConfig) *Credentials {
	return &Credentials{
		Endpoint:     cfg.Endpoint,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Certificate:  cfg.Cert,
		Organization: cfg.Organization,
		Application:  cfg.Application,
	}
}

func parseBase64(b64 string) *Credentials {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
	if err != nil {
		return nil
	}
	var cred Credentials
	if err := json.Unmarshal(raw, &cred); err != nil {
		return nil
	}
	return &cred
}

func parseFile(path string) *Credentials {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var cred Credentials
	if err := json.Unmarshal(raw, &cred); err != nil {
		return nil
	}
	return &cred
}

// maybePersist writes a base64-sourced credential to the first default path
// for reuse across restarts. Opt-in via CASDOOR_CREDENTIALS_WRITE, and an
// existing file is never overwritten. Failures are ignored; this is a
// convenience, not part of the loader contract.
func maybePersist(cred *Credentials) {
	flag := strings.ToLower(os.Getenv(envCredentialsWrite))
	if flag != "true" && flag != "1" {
		return
	}
	target := defaultCredentialPaths[0]
	if _, err := os.Stat(target); err == nil {
		return
	}
	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(target, data, 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist provider credentials: %v\n", err)
	}
}
