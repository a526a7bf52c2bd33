package keys

import (
	"fmt"

	"github.com/sleet-near/hello-near/client/config"
)

// Credential is a signer's key material. AccountID and PublicKey are always
// present; PrivateKey is optional and without it the account cannot sign.
type Credential struct {
	AccountID  string `json:"account_id" validate:"required,account_id"`
	PublicKey  string `json:"public_key" validate:"required"`
	PrivateKey string `json:"private_key,omitempty"`
	// Network is the section name the credential was loaded for, if known.
	Network string `json:"network,omitempty"`
}

// CanSign reports whether the credential carries a private key.
func (c Credential) CanSign() bool {
	return c.PrivateKey != ""
}

// Validate checks the account id and public key, and when a private key is
// present, that it decodes and belongs to the public key.
func (c Credential) Validate() error {
	if err := config.NewValidator().Struct(c); err != nil {
		return fmt.Errorf("credential: %w", err)
	}
	pub, err := c.ParsedPublicKey()
	if err != nil {
		return err
	}
	if !c.CanSign() {
		return nil
	}
	derived, err := PublicKeyFromPrivate(c.PrivateKey)
	if err != nil {
		return err
	}
	if derived != pub {
		return fmt.Errorf("private key does not match public key %s", pub)
	}
	return nil
}

// ParsedPublicKey parses the credential's public key.
func (c Credential) ParsedPublicKey() (PublicKey, error) {
	return ParsePublicKey(c.PublicKey)
}

// Redacted returns a copy without the private key, for display.
func (c Credential) Redacted() Credential {
	c.PrivateKey = ""
	return c
}

// String implements fmt.Stringer without exposing the private key.
func (c Credential) String() string {
	return fmt.Sprintf("%s (%s)", c.AccountID, c.PublicKey)
}
