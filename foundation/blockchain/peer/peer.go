// Package peer maintains the peer related information such as the set
// of known peers and their addresses.
package peer

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// AddressError is returned when an address can't be parsed into a
// network location.
type AddressError struct {
	Address string
	Err     error
}

// Error implements the error interface.
func (ae *AddressError) Error() string {
	return fmt.Sprintf("invalid address %q: %s", ae.Address, ae.Err)
}

// Unwrap provides support for errors.Is and errors.As.
func (ae *AddressError) Unwrap() error {
	return ae.Err
}

// =============================================================================

// Peer represents information about a Node in the network.
type Peer struct {
	Host string `json:"host"`
}

// New contructs a new info value.
func New(host string) Peer {
	return Peer{
		Host: host,
	}
}

// Parse extracts the network location (host:port) from the address. The
// address may be a full URL like http://10.0.0.5:5000 or just host:port.
func Parse(address string) (Peer, error) {
	raw := strings.TrimSpace(address)
	if raw == "" {
		return Peer{}, &AddressError{Address: address, Err: errors.New("empty address")}
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Peer{}, &AddressError{Address: address, Err: err}
	}

	if u.Hostname() == "" {
		return Peer{}, &AddressError{Address: address, Err: errors.New("missing host")}
	}

	port, err := strconv.Atoi(u.Port())
	if err != nil || port < 1 || port > 65535 {
		return Peer{}, &AddressError{Address: address, Err: errors.New("missing or invalid port")}
	}

	return New(u.Host), nil
}

// Match validates if the specified host matches this node.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// String implements the fmt.Stringer interface.
func (p Peer) String() string {
	return p.Host
}

// =============================================================================

// PeerSet represents the data representation to maintain a set of known peers.
type PeerSet struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewPeerSet constructs a new info set to manage node peer information.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		set: make(map[Peer]struct{}),
	}
}

// Add adds a new node to the set. It returns false if the peer is
// already known.
func (ps *PeerSet) Add(peer Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	_, exists := ps.set[peer]
	if !exists {
		ps.set[peer] = struct{}{}
		return true
	}

	return false
}

// Remove removes a node from the set.
func (ps *PeerSet) Remove(peer Peer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.set, peer)
}

// Count returns the number of known peers.
func (ps *PeerSet) Count() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.set)
}

// Copy returns a list of the known peers excluding the specified host,
// sorted by host so output is stable.
func (ps *PeerSet) Copy(host string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	peers := make([]Peer, 0, len(ps.set))
	for peer := range ps.set {
		if !peer.Match(host) {
			peers = append(peers, peer)
		}
	}

	sort.Slice(peers, func(i, j int) bool { return peers[i].Host < peers[j].Host })

	return peers
}
