package keys

import (
	"crypto/ed25519"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/sleet-near/hello-near/client/config"
	"github.com/sleet-near/hello-near/client/errors"
)

// StoreTestSuite tests reading a near CLI credentials directory.
type StoreTestSuite struct {
	suite.Suite
	dir   string
	store *Store
}

func (s *StoreTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.store = NewStore(s.dir, nil)
}

func (s *StoreTestSuite) writeCredential(section, file string, body any) {
	dir := filepath.Join(s.dir, section)
	s.Require().NoError(os.MkdirAll(dir, 0o700))
	data, err := json.Marshal(body)
	s.Require().NoError(err)
	s.Require().NoError(os.WriteFile(filepath.Join(dir, file), data, 0o600))
}

func (s *StoreTestSuite) keyPair(seed byte) (string, string) {
	priv := testKey(seed)
	return PublicKeyFromEd25519(priv.Public().(ed25519.PublicKey)).String(), EncodePrivateKey(priv)
}

func (s *StoreTestSuite) TestListMissingDirectory() {
	creds, err := s.store.List(config.Primary)
	s.Require().NoError(err)
	s.Require().Empty(creds)
}

func (s *StoreTestSuite) TestListFiltersByNetwork() {
	pub1, priv1 := s.keyPair(1)
	pub2, priv2 := s.keyPair(2)
	pub3, _ := s.keyPair(3)

	s.writeCredential("testnet", "zed.testnet.json", credentialFile{PublicKey: pub1, PrivateKey: priv1})
	s.writeCredential("testnet", "alice.testnet.json", credentialFile{AccountID: "alice.testnet", PublicKey: pub2, PrivateKey: priv2})
	s.writeCredential("mainnet", "bob.near.json", credentialFile{PublicKey: pub3})

	creds, err := s.store.List(config.Secondary)
	s.Require().NoError(err)
	s.Require().Len(creds, 2)
	s.Require().Equal("alice.testnet", creds[0].AccountID)
	s.Require().Equal("zed.testnet", creds[1].AccountID)
	s.Require().Equal("testnet", creds[0].Network)
	s.Require().True(creds[0].CanSign())

	mainnet, err := s.store.List(config.Primary)
	s.Require().NoError(err)
	s.Require().Len(mainnet, 1)
	s.Require().False(mainnet[0].CanSign())
}

func (s *StoreTestSuite) TestListSkipsInvalidFiles() {
	pub, priv := s.keyPair(4)
	_, otherPriv := s.keyPair(5)

	s.writeCredential("testnet", "good.testnet.json", credentialFile{PublicKey: pub, PrivateKey: priv})
	s.writeCredential("testnet", "mismatch.testnet.json", credentialFile{PublicKey: pub, PrivateKey: otherPriv})
	s.writeCredential("testnet", "nokey.testnet.json", map[string]string{"private_key": priv})

	dir := filepath.Join(s.dir, "testnet")
	s.Require().NoError(os.WriteFile(filepath.Join(dir, "broken.testnet.json"), []byte("{"), 0o600))
	s.Require().NoError(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o600))
	s.Require().NoError(os.MkdirAll(filepath.Join(dir, "nested.json"), 0o700))

	creds, err := s.store.List(config.Secondary)
	s.Require().NoError(err)
	s.Require().Len(creds, 1)
	s.Require().Equal("good.testnet", creds[0].AccountID)
}

func (s *StoreTestSuite) TestGet() {
	pub, priv := s.keyPair(6)
	s.writeCredential("testnet", "carol.testnet.json", credentialFile{PublicKey: pub, PrivateKey: priv})

	cred, err := s.store.Get(config.Secondary, "carol.testnet")
	s.Require().NoError(err)
	s.Require().Equal(pub, cred.PublicKey)

	_, err = s.store.Get(config.Secondary, "dave.testnet")
	s.Require().ErrorIs(err, errors.ErrCredential)
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func TestDefaultStore(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	store, err := DefaultStore(nil)
	require.NoError(t, err)
	require.Equal(t, DefaultDirName, filepath.Base(store.Dir))
}
