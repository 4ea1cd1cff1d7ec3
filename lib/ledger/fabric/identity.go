package fabric

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/hyperledger/fabric-gateway/pkg/identity"

	"github.com/Kodjaoglanian/blockvent/lib/store"
)

// LoadIdentity returns the identity saved in the wallet under label. When the wallet has none, the enrollment
// certificate and private key are read from certPath and keyPath and saved under label first.
func LoadIdentity(wallet store.DB, label, mspID, certPath, keyPath string) (store.Identity, error) {
	id, err := wallet.GetIdentity(label)
	if err == nil {
		if !id.Valid() {
			return id, fmt.Errorf("identity %s: %w", label, store.ErrBadIdentity)
		}

		return id, nil
	}

	if !errors.Is(err, store.ErrIdentityNotFound) {
		return id, fmt.Errorf("cannot read identity %s from wallet: %w", label, err)
	}

	cert, err := os.ReadFile(certPath)
	if err != nil {
		return id, fmt.Errorf("cannot read certificate of %s: %w", label, err)
	}

	key, err := os.ReadFile(keyPath)
	if err != nil {
		return id, fmt.Errorf("cannot read private key of %s: %w", label, err)
	}

	id = store.NewX509Identity(mspID, string(cert), string(key))
	if err = wallet.PutIdentity(label, id); err != nil {
		return id, fmt.Errorf("cannot save identity %s to wallet: %w", label, err)
	}

	log.Printf("Identity %s imported into the wallet", label)

	return id, nil
}

// signer returns the client identity and signing function for a wallet identity.
func signer(id store.Identity) (identity.Identity, identity.Sign, error) {
	cert, err := identity.CertificateFromPEM([]byte(id.Credentials.Certificate))
	if err != nil {
		return nil, nil, fmt.Errorf("bad certificate: %w", err)
	}

	x509ID, err := identity.NewX509Identity(id.MspID, cert)
	if err != nil {
		return nil, nil, err
	}

	key, err := identity.PrivateKeyFromPEM([]byte(id.Credentials.PrivateKey))
	if err != nil {
		return nil, nil, fmt.Errorf("bad private key: %w", err)
	}

	sign, err := identity.NewPrivateKeySign(key)
	if err != nil {
		return nil, nil, err
	}

	return x509ID, sign, nil
}
