package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/database"
	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/genesis"
	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/storage/memory"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// proofs is the sequence of smallest proofs starting from the genesis proof.
var proofs = []uint64{100, 35293, 35089, 119678, 146502}

func noopEv(v string, args ...any) {}

// buildChain constructs a valid chain of the specified length using the
// known proof sequence.
func buildChain(t *testing.T, length int) []database.Block {
	t.Helper()

	gen := genesis.Default()
	chain := []database.Block{{Index: 0, Timestamp: 1700000000.5, Transactions: []database.Tx{}, Proof: gen.Proof, PreviousHash: gen.PreviousHash}}

	for i := 1; i < length; i++ {
		prev := chain[i-1]
		block := database.Block{
			Index:        uint64(i),
			Timestamp:    prev.Timestamp + 1,
			Transactions: []database.Tx{database.NewTx("A", "B", float64(i*10))},
			Proof:        proofs[i],
			PreviousHash: prev.Hash(),
		}
		chain = append(chain, block)
	}

	return chain
}

// =============================================================================

func Test_Hash(t *testing.T) {
	t.Log("Given the need to hash blocks the same way every node does.")
	{
		genesisBlock := database.Block{Index: 0, Timestamp: 1700000000.5, Transactions: []database.Tx{}, Proof: 100, PreviousHash: "1"}
		block := database.Block{
			Index:        1,
			Timestamp:    1700000001.25,
			Transactions: []database.Tx{database.NewTx("A", "B", 10)},
			Proof:        35293,
			PreviousHash: "b2e13f35dc581007c8fc63bf211fc0a9d9d62a036e8df0b6531501f69b48bcd3",
		}

		t.Logf("\tTest 0:\tWhen hashing known blocks.")
		{
			if got := genesisBlock.Hash(); got != block.PreviousHash {
				t.Logf("\t\tTest 0:\tgot: %s", got)
				t.Logf("\t\tTest 0:\texp: %s", block.PreviousHash)
				t.Fatalf("\t%s\tTest 0:\tShould get the reference hash for the genesis block.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get the reference hash for the genesis block.", success)

			const exp = "440eed47c05caea0d93ca58f3caaf579747a790560ca094c2443b13846473dfe"
			if got := block.Hash(); got != exp {
				t.Logf("\t\tTest 0:\tgot: %s", got)
				t.Logf("\t\tTest 0:\texp: %s", exp)
				t.Fatalf("\t%s\tTest 0:\tShould get the reference hash for block 1.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get the reference hash for block 1.", success)
		}

		t.Logf("\tTest 1:\tWhen hashing the same block twice.")
		{
			if block.Hash() != block.Hash() {
				t.Fatalf("\t%s\tTest 1:\tShould get the same hash.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould get the same hash.", success)

			nilTrans := genesisBlock
			nilTrans.Transactions = nil
			if nilTrans.Hash() != genesisBlock.Hash() {
				t.Fatalf("\t%s\tTest 1:\tShould hash nil and empty transactions the same.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould hash nil and empty transactions the same.", success)
		}
	}
}

func Test_ProofOfWork(t *testing.T) {
	t.Log("Given the need to solve the proof of work puzzle.")
	{
		for testID := 1; testID < len(proofs); testID++ {
			lastProof := proofs[testID-1]

			t.Logf("\tTest %d:\tWhen searching from last proof %d.", testID, lastProof)
			{
				proof, err := database.FindProof(context.Background(), lastProof, noopEv)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to find a proof: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould be able to find a proof.", success, testID)

				if proof != proofs[testID] {
					t.Logf("\t\tTest %d:\tgot: %d", testID, proof)
					t.Logf("\t\tTest %d:\texp: %d", testID, proofs[testID])
					t.Fatalf("\t%s\tTest %d:\tShould find the reference proof.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould find the reference proof.", success, testID)

				if !database.ValidProof(lastProof, proof) {
					t.Fatalf("\t%s\tTest %d:\tShould be a valid proof.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould be a valid proof.", success, testID)

				for p := uint64(0); p < proof; p++ {
					if database.ValidProof(lastProof, p) {
						t.Fatalf("\t%s\tTest %d:\tShould be the smallest proof, %d also solves it.", failed, testID, p)
					}
				}
				t.Logf("\t%s\tTest %d:\tShould be the smallest proof.", success, testID)
			}
		}

		t.Logf("\tTest %d:\tWhen the search is cancelled.", len(proofs))
		{
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			if _, err := database.FindProof(ctx, 100, noopEv); !errors.Is(err, context.Canceled) {
				t.Fatalf("\t%s\tTest %d:\tShould stop with a cancelled error, got %v.", failed, len(proofs), err)
			}
			t.Logf("\t%s\tTest %d:\tShould stop with a cancelled error.", success, len(proofs))
		}
	}
}

func Test_ValidateChain(t *testing.T) {
	type table struct {
		name   string
		tamper func(chain []database.Block)
		index  int
	}

	tt := []table{
		{name: "transactions", tamper: func(c []database.Block) { c[2].Transactions[0].Amount = 1000 }, index: 3},
		{name: "added-transaction", tamper: func(c []database.Block) { c[2].Transactions = append(c[2].Transactions, database.NewTx("C", "D", 1)) }, index: 3},
		{name: "proof", tamper: func(c []database.Block) { c[2].Proof++ }, index: 2},
		{name: "previous-hash", tamper: func(c []database.Block) { c[2].PreviousHash = c[0].Hash() }, index: 2},
		{name: "index", tamper: func(c []database.Block) { c[4].Index = 7 }, index: 4},
		{name: "genesis", tamper: func(c []database.Block) { c[0].PreviousHash = "0" }, index: 0},
	}

	gen := genesis.Default()

	t.Log("Given the need to validate a chain.")
	{
		t.Logf("\tTest 0:\tWhen handling chains built with valid proofs.")
		{
			for length := 1; length <= len(proofs); length++ {
				if err := database.ValidateChain(buildChain(t, length), gen, noopEv); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould validate a chain of length %d: %v", failed, length, err)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould validate every chain.", success)

			err := database.ValidateChain(nil, gen, noopEv)
			if !errors.Is(err, database.ErrEmptyChain) {
				t.Fatalf("\t%s\tTest 0:\tShould reject an empty chain, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject an empty chain.", success)
		}

		for testID, tst := range tt {
			testID++
			t.Logf("\tTest %d:\tWhen tampering with %s.", testID, tst.name)
			{
				f := func(t *testing.T) {
					chain := buildChain(t, len(proofs))
					tst.tamper(chain)

					if database.IsValidChain(chain, gen) {
						t.Fatalf("\t%s\tTest %d:\tShould detect the tampered chain.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould detect the tampered chain.", success, testID)

					var ce *database.ChainError
					if !errors.As(database.ValidateChain(chain, gen, noopEv), &ce) {
						t.Fatalf("\t%s\tTest %d:\tShould get back a chain error.", failed, testID)
					}
					if ce.Index != tst.index {
						t.Logf("\t\tTest %d:\tgot: %d", testID, ce.Index)
						t.Logf("\t\tTest %d:\texp: %d", testID, tst.index)
						t.Fatalf("\t%s\tTest %d:\tShould fail at the right block.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould fail at the right block.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_Database(t *testing.T) {
	gen := genesis.Default()

	t.Log("Given the need to manage the chain in storage.")
	{
		storage, err := memory.New()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct storage: %v", failed, err)
		}

		db, err := database.New(gen, storage, noopEv)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the database: %v", failed, err)
		}
		defer db.Close()

		t.Logf("\tTest 0:\tWhen the database is constructed.")
		{
			if db.Length() != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould have one block, got %d.", failed, db.Length())
			}
			latest, err := db.LatestBlock()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould have a latest block: %v", failed, err)
			}
			if !latest.IsGenesis(gen) || len(latest.Transactions) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould have the genesis block, got %+v.", failed, latest)
			}
			t.Logf("\t%s\tTest 0:\tShould have the genesis block.", success)
		}

		t.Logf("\tTest 1:\tWhen writing blocks.")
		{
			if err := db.Write(database.Block{Index: 5}); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould not write a block out of order.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould not write a block out of order.", success)

			latest, _ := db.LatestBlock()
			next := database.NewBlock(1, []database.Tx{database.NewTx("A", "B", 10)}, proofs[1], latest.Hash())
			if err := db.Write(next); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould write the next block: %v", failed, err)
			}

			chain, err := db.Copy()
			if err != nil || len(chain) != 2 {
				t.Fatalf("\t%s\tTest 1:\tShould copy two blocks: %v", failed, err)
			}
			if !database.IsValidChain(chain, gen) {
				t.Fatalf("\t%s\tTest 1:\tShould hold a valid chain.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould write the next block.", success)

			chain[1].Transactions[0].Amount = 99
			stored, _ := db.GetBlock(1)
			if stored.Transactions[0].Amount != 10 {
				t.Fatalf("\t%s\tTest 1:\tShould not allow a copy to mutate a committed block.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould not allow a copy to mutate a committed block.", success)
		}

		t.Logf("\tTest 2:\tWhen replacing the chain.")
		{
			bad := buildChain(t, 3)
			bad[2].Index = 9
			if err := db.Replace(bad); err == nil {
				t.Fatalf("\t%s\tTest 2:\tShould not replace with an out of order chain.", failed)
			}
			if db.Length() != 2 {
				t.Fatalf("\t%s\tTest 2:\tShould restore the previous chain, got length %d.", failed, db.Length())
			}
			t.Logf("\t%s\tTest 2:\tShould restore the previous chain on failure.", success)

			good := buildChain(t, 5)
			if err := db.Replace(good); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould replace the chain: %v", failed, err)
			}
			latest, _ := db.LatestBlock()
			if db.Length() != 5 || latest.Hash() != good[4].Hash() {
				t.Fatalf("\t%s\tTest 2:\tShould hold the new chain.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould hold the new chain.", success)
		}
	}
}
