package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/client"
	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/peer"
	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/state"
	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/worker"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// peerNode serves the chain of another in-process node.
type peerNode struct {
	st *state.State
}

func (pn peerNode) QueryChain(ctx context.Context, pr peer.Peer) (client.Chain, error) {
	chain, err := pn.st.RetrieveChain()
	if err != nil {
		return client.Chain{}, err
	}

	return client.Chain{Length: len(chain), Chain: chain}, nil
}

func noopEv(v string, args ...any) {}

func Test_SignalResolve(t *testing.T) {
	t.Log("Given the need to adopt a longer chain in the background.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a peer holding a longer chain is registered.", testID)
		{
			remote, err := state.New(state.Config{NodeID: "remote", EvHandler: noopEv})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the remote node: %s", failed, testID, err)
			}
			defer remote.Shutdown()

			for remote.QueryChainLength() < 3 {
				if _, err := remote.MineNewBlock(context.Background()); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to mine: %s", failed, testID, err)
				}
			}

			local, err := state.New(state.Config{NodeID: "local", Fetcher: peerNode{st: remote}, EvHandler: noopEv})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the local node: %s", failed, testID, err)
			}

			w := worker.Run(local, 0, noopEv)
			defer local.Shutdown()

			if _, errs := local.RegisterNodes("10.0.0.1:5000"); len(errs) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould be able to register the peer: %v", failed, testID, errs)
			}

			deadline := time.Now().Add(5 * time.Second)
			for local.QueryChainLength() != 3 {
				if time.Now().After(deadline) {
					t.Fatalf("\t%s\tTest %d:\tShould adopt the remote chain, length %d.", failed, testID, local.QueryChainLength())
				}
				time.Sleep(10 * time.Millisecond)
			}
			t.Logf("\t%s\tTest %d:\tShould adopt the remote chain.", success, testID)

			w.Shutdown()
			w.Shutdown()
			t.Logf("\t%s\tTest %d:\tShould be able to shut down more than once.", success, testID)
		}
	}
}
