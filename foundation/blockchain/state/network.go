package state

import (
	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/peer"
)

// RegisterNodes parses each address into a peer and adds it to the set of
// known peers. Addresses that can't be parsed produce a *peer.AddressError
// and don't stop the remaining addresses from being registered. Registering
// a peer that is already known is a no-op.
func (s *State) RegisterNodes(addresses ...string) ([]peer.Peer, []error) {
	var added []peer.Peer
	var failed []error

	for _, address := range addresses {
		pr, err := peer.Parse(address)
		if err != nil {
			s.evHandler("state: RegisterNodes: ERROR: %s", err)
			failed = append(failed, err)
			continue
		}

		if s.AddKnownPeer(pr) {
			s.evHandler("state: RegisterNodes: add peer[%s]", pr)
			added = append(added, pr)
		}
	}

	// A new peer may know a longer chain.
	if len(added) > 0 && s.Worker != nil {
		s.Worker.SignalResolve()
	}

	return added, failed
}

// AddKnownPeer provides the ability to add a new peer. It returns false if
// the peer was already known.
func (s *State) AddKnownPeer(pr peer.Peer) bool {
	return s.knownPeers.Add(pr)
}

// RemoveKnownPeer provides the ability to remove a peer.
func (s *State) RemoveKnownPeer(pr peer.Peer) {
	s.knownPeers.Remove(pr)
}
