package store

// X509 is the only identity type supported.
const (
	X509            = "X.509"
	IdentityVersion = 1
)

// Credentials holds the PEM encoded enrollment certificate and private key of an identity.
type Credentials struct {
	Certificate string `json:"certificate" bson:"certificate"`
	PrivateKey  string `json:"privateKey" bson:"privateKey"`
}

// Identity contains the fields of an identity saved to the wallet. The JSON form matches the identity files written by
// the Fabric Node.js SDK file system wallet.
type Identity struct {
	Credentials Credentials `json:"credentials" bson:"credentials"`
	MspID       string      `json:"mspId" bson:"mspId"`
	Type        string      `json:"type" bson:"type"`
	Version     int         `json:"version" bson:"version"`
}

// NewX509Identity returns an X.509 identity for the given MSP id and PEM material.
func NewX509Identity(mspID, cert, key string) Identity {
	return Identity{
		Credentials: Credentials{Certificate: cert, PrivateKey: key},
		MspID:       mspID,
		Type:        X509,
		Version:     IdentityVersion,
	}
}

// Valid reports whether the identity has all the material needed to sign.
func (i Identity) Valid() bool {
	return i.Credentials.Certificate != "" && i.Credentials.PrivateKey != "" && i.MspID != ""
}

// Checkpoint contains the position of the last contract event relayed for a channel.
type Checkpoint struct {
	Block uint64 `json:"block" bson:"block"`
	TxID  string `json:"txId" bson:"txId"`
}

// BlockNumber returns the block of the last relayed event.
func (c Checkpoint) BlockNumber() uint64 { return c.Block }

// TransactionID returns the transaction of the last relayed event.
func (c Checkpoint) TransactionID() string { return c.TxID }
