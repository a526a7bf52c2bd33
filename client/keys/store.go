package keys

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cosmossdk.io/log"

	"github.com/sleet-near/hello-near/client/config"
	"github.com/sleet-near/hello-near/client/errors"
)

// DefaultDirName is the credentials directory under the user's home.
const DefaultDirName = ".near-credentials"

// credentialFile is the on-disk layout written by the near CLI.
type credentialFile struct {
	AccountID  string `json:"account_id"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

// Store reads credentials from <Dir>/<mainnet|testnet>/<account>.json.
type Store struct {
	Dir    string
	logger log.Logger
}

// NewStore returns a store rooted at dir.
func NewStore(dir string, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Store{Dir: dir, logger: logger.With("module", "credential-store")}
}

// DefaultStore returns a store rooted at ~/.near-credentials.
func DefaultStore(logger log.Logger) (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("locate home directory: %w", err)
	}
	return NewStore(filepath.Join(home, DefaultDirName), logger), nil
}

// List returns the credentials stored for network, sorted by account id. A
// missing network directory yields an empty list. Files that cannot be read or
// parsed are skipped.
func (s *Store) List(network config.Network) ([]Credential, error) {
	dir := filepath.Join(s.Dir, network.Section())
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials directory %s: %w", dir, err)
	}

	var creds []Credential
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		cred, err := s.readFile(path, network)
		if err != nil {
			s.logger.Debug("skipping credential file", "path", path, "err", err)
			continue
		}
		creds = append(creds, cred)
	}

	sort.Slice(creds, func(i, j int) bool { return creds[i].AccountID < creds[j].AccountID })
	return creds, nil
}

// Get returns the credential for accountID on network.
func (s *Store) Get(network config.Network, accountID string) (Credential, error) {
	creds, err := s.List(network)
	if err != nil {
		return Credential{}, errors.Wrap(errors.StageCredential, errors.ErrCredential, err)
	}
	for _, c := range creds {
		if c.AccountID == accountID {
			return c, nil
		}
	}
	return Credential{}, errors.New(errors.StageCredential, errors.ErrCredential,
		"no credential for %s on %s", accountID, network.Section())
}

func (s *Store) readFile(path string, network config.Network) (Credential, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is built from the configured credentials directory
	if err != nil {
		return Credential{}, err
	}
	var f credentialFile
	if err := json.Unmarshal(data, &f); err != nil {
		return Credential{}, err
	}

	accountID := f.AccountID
	if accountID == "" {
		accountID = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	cred := Credential{
		AccountID:  accountID,
		PublicKey:  f.PublicKey,
		PrivateKey: f.PrivateKey,
		Network:    network.Section(),
	}
	if err := cred.Validate(); err != nil {
		return Credential{}, err
	}
	return cred, nil
}
