package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/database"
	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/peer"
	"golang.org/x/sync/errgroup"
)

// candidate is a chain reported by a peer that is longer than the local
// chain and passed validation.
type candidate struct {
	host  string
	chain []database.Block
	tip   string
}

// ResolveConflicts is the consensus algorithm. Every known peer is asked for
// its chain and the local chain is replaced by the longest valid chain that
// is strictly longer than the local one. It reports whether the local chain
// was replaced.
//
// Peers that can't be reached, answer with an error or report an invalid
// chain are skipped. Among valid chains of the same length the one with the
// smallest tip hash is picked so the outcome does not depend on the order
// peers answer in.
func (s *State) ResolveConflicts(ctx context.Context) (bool, error) {
	s.work.Lock()
	defer s.work.Unlock()

	s.evHandler("state: ResolveConflicts: started")
	defer s.evHandler("state: ResolveConflicts: completed")

	localLength := int(s.db.Length())
	peers := s.knownPeers.Copy(s.host)

	var (
		mu         sync.Mutex
		candidates []candidate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxPeerQueries)

	for _, pr := range peers {
		g.Go(func() error {
			cand, ok := s.queryPeer(gctx, pr, localLength)
			if !ok {
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			candidates = append(candidates, cand)

			return nil
		})
	}

	// Peer failures are never returned so Wait can't fail.
	g.Wait()

	if err := ctx.Err(); err != nil {
		return false, err
	}

	best, ok := pickBest(candidates)
	if !ok {
		s.evHandler("state: ResolveConflicts: local chain is authoritative: length[%d]", localLength)
		return false, nil
	}

	s.evHandler("state: ResolveConflicts: replacing chain: peer[%s]: length[%d]: tip[%s]", best.host, len(best.chain), best.tip)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Replace(best.chain); err != nil {
		return false, fmt.Errorf("replacing chain from %s: %w", best.host, err)
	}

	return true, nil
}

// queryPeer fetches the chain of the peer and reports it back when it is a
// valid chain longer than the local one.
func (s *State) queryPeer(ctx context.Context, pr peer.Peer, localLength int) (candidate, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.peerTimeout)
	defer cancel()

	s.evHandler("state: ResolveConflicts: query peer[%s]", pr)

	resp, err := s.fetcher.QueryChain(ctx, pr)
	if err != nil {
		s.evHandler("state: ResolveConflicts: peer[%s]: ERROR: %s", pr, err)
		return candidate{}, false
	}

	if resp.Length != len(resp.Chain) {
		s.evHandler("state: ResolveConflicts: peer[%s]: length mismatch: reported[%d]: got[%d]", pr, resp.Length, len(resp.Chain))
		return candidate{}, false
	}

	if len(resp.Chain) <= localLength {
		s.evHandler("state: ResolveConflicts: peer[%s]: not longer: length[%d]", pr, len(resp.Chain))
		return candidate{}, false
	}

	if err := database.ValidateChain(resp.Chain, s.genesis, s.evHandler); err != nil {
		s.evHandler("state: ResolveConflicts: peer[%s]: invalid chain: %s", pr, err)
		return candidate{}, false
	}

	cand := candidate{
		host:  pr.Host,
		chain: resp.Chain,
		tip:   resp.Chain[len(resp.Chain)-1].Hash(),
	}

	return cand, true
}

// pickBest selects the longest candidate, breaking ties by the smallest
// tip hash.
func pickBest(candidates []candidate) (candidate, bool) {
	if len(candidates) == 0 {
		return candidate{}, false
	}

	best := candidates[0]
	for _, cand := range candidates[1:] {
		switch {
		case len(cand.chain) > len(best.chain):
			best = cand
		case len(cand.chain) == len(best.chain) && cand.tip < best.tip:
			best = cand
		}
	}

	return best, true
}
