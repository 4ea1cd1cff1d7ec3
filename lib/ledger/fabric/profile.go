package fabric

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Errors returned while reading a connection profile.
var (
	ErrNoPeers     = errors.New("connection profile defines no peers")
	ErrPeerUnknown = errors.New("peer not found in connection profile")
	ErrNoTLSCACert = errors.New("peer has no TLS CA certificate")
)

// Profile is the subset of a Fabric common connection profile used to reach a gateway peer.
type Profile struct {
	Name   string `json:"name"`
	Client struct {
		Organization string `json:"organization"`
	} `json:"client"`
	Organizations map[string]Organization `json:"organizations"`
	Peers         map[string]PeerConfig   `json:"peers"`

	dir string // relative TLS paths are resolved against it
}

// Organization is an organization entry of a connection profile.
type Organization struct {
	MSPID string   `json:"mspid"`
	Peers []string `json:"peers"`
}

// PeerConfig is a peer entry of a connection profile.
type PeerConfig struct {
	URL        string `json:"url"`
	TLSCACerts struct {
		PEM  string `json:"pem"`
		Path string `json:"path"`
	} `json:"tlsCACerts"`
	GRPCOptions map[string]interface{} `json:"grpcOptions"`
}

// Peer is a gateway peer resolved from a connection profile.
type Peer struct {
	Name string
	// Target is the peer address without scheme, as given to the gRPC dialer.
	Target string
	// TLS is false for grpc:// urls.
	TLS bool
	// CACert is the PEM encoded TLS CA certificate.
	CACert []byte
	// ServerName overrides the TLS server name, when the profile sets one.
	ServerName string
}

// ReadProfile reads the JSON connection profile at path.
func ReadProfile(path string) (*Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read connection profile: %w", err)
	}

	p := &Profile{}
	if err = json.Unmarshal(b, p); err != nil {
		return nil, fmt.Errorf("cannot decode connection profile %s: %w", path, err)
	}

	p.dir = filepath.Dir(path)

	return p, nil
}

// Peer resolves the gateway peer. With a name, that peer is used; otherwise the first peer of the client organization,
// or else the first peer of the profile by name.
func (p *Profile) Peer(name string) (Peer, error) {
	if len(p.Peers) == 0 {
		return Peer{}, ErrNoPeers
	}

	if name == "" {
		name = p.defaultPeer()
	}

	pc, ok := p.Peers[name]
	if !ok {
		return Peer{}, fmt.Errorf("%w: %s", ErrPeerUnknown, name)
	}

	peer := Peer{Name: name, ServerName: serverName(pc.GRPCOptions)}

	switch {
	case strings.HasPrefix(pc.URL, "grpcs://"):
		peer.Target, peer.TLS = strings.TrimPrefix(pc.URL, "grpcs://"), true
	case strings.HasPrefix(pc.URL, "grpc://"):
		peer.Target = strings.TrimPrefix(pc.URL, "grpc://")
	default:
		peer.Target, peer.TLS = pc.URL, true
	}

	if !peer.TLS {
		return peer, nil
	}

	switch {
	case pc.TLSCACerts.PEM != "":
		peer.CACert = []byte(pc.TLSCACerts.PEM)
	case pc.TLSCACerts.Path != "":
		path := pc.TLSCACerts.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(p.dir, path)
		}

		b, err := os.ReadFile(path)
		if err != nil {
			return Peer{}, fmt.Errorf("cannot read TLS CA certificate of %s: %w", name, err)
		}

		peer.CACert = b
	default:
		return Peer{}, fmt.Errorf("%w: %s", ErrNoTLSCACert, name)
	}

	return peer, nil
}

// MSPID returns the MSP id of the client organization, if the profile names one.
func (p *Profile) MSPID() string {
	return p.Organizations[p.Client.Organization].MSPID
}

func (p *Profile) defaultPeer() string {
	if org, ok := p.Organizations[p.Client.Organization]; ok {
		for _, name := range org.Peers {
			if _, ok := p.Peers[name]; ok {
				return name
			}
		}
	}

	names := make([]string, 0, len(p.Peers))
	for name := range p.Peers {
		names = append(names, name)
	}

	sort.Strings(names)

	return names[0]
}

func serverName(opts map[string]interface{}) string {
	for _, k := range []string{"ssl-target-name-override", "hostnameOverride"} {
		if s, ok := opts[k].(string); ok && s != "" {
			return s
		}
	}

	return ""
}
