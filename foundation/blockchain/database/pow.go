package database

import (
	"context"
	"strconv"

	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/digest"
)

// Difficulty is the number of leading hex 0's a puzzle hash must have.
const Difficulty = 4

// checkInterval is how many attempts are made between checks of the context.
const checkInterval = 1 << 12

// ValidProof reports if the proof solves the puzzle seeded by lastProof. The
// puzzle hashes the decimal values of both proofs concatenated together.
func ValidProof(lastProof uint64, proof uint64) bool {
	guess := strconv.AppendUint(nil, lastProof, 10)
	guess = strconv.AppendUint(guess, proof, 10)

	return isHashSolved(Difficulty, digest.Sum(guess))
}

// FindProof performs the work of mining by searching for the smallest proof
// that solves the puzzle seeded by lastProof. The search starts at 0 and
// increments by 1 until a solution is found. It never gives up on its own,
// only cancelling the context stops it.
func FindProof(ctx context.Context, lastProof uint64, ev func(v string, args ...any)) (uint64, error) {
	ev("database: FindProof: MINING: started: lastProof[%d]", lastProof)
	defer ev("database: FindProof: MINING: completed")

	var proof uint64
	for {
		if proof%checkInterval == 0 && ctx.Err() != nil {
			ev("database: FindProof: MINING: CANCELLED: attempts[%d]", proof)
			return 0, ctx.Err()
		}

		if ValidProof(lastProof, proof) {
			ev("database: FindProof: MINING: SOLVED: proof[%d]: attempts[%d]", proof, proof+1)
			return proof, nil
		}

		proof++
		if proof%1_000_000 == 0 {
			ev("database: FindProof: MINING: attempts[%d]", proof)
		}
	}
}

// isHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func isHashSolved(difficulty int, hash string) bool {
	const match = "0000000000000000"

	if len(hash) != 64 || difficulty > len(match) {
		return false
	}

	return hash[:difficulty] == match[:difficulty]
}
