package memory_test

import (
	"testing"

	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/database"
	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/storage/memory"
)

func Test_ReadWrite(t *testing.T) {
	m, err := memory.New()
	if err != nil {
		t.Fatalf("Should be able to construct memory storage: %v", err)
	}
	defer m.Close()

	for i := uint64(0); i < 3; i++ {
		if err := m.Write(database.Block{Index: i, Proof: i * 10}); err != nil {
			t.Fatalf("Should be able to write block %d: %v", i, err)
		}
	}

	if err := m.Write(database.Block{Index: 7}); err == nil {
		t.Fatal("Should not be able to write a block out of order.")
	}

	var got []database.Block
	iter := m.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			t.Fatalf("Should be able to iterate: %v", err)
		}
		got = append(got, block)
	}

	if len(got) != 3 {
		t.Fatalf("Should iterate over 3 blocks, got %d", len(got))
	}
	for i, block := range got {
		if block.Index != uint64(i) {
			t.Fatalf("Should iterate in order, got index %d at %d", block.Index, i)
		}
	}

	block, err := m.GetBlock(2)
	if err != nil || block.Proof != 20 {
		t.Fatalf("Should be able to get block 2: %v %+v", err, block)
	}

	if _, err := m.GetBlock(3); err == nil {
		t.Fatal("Should not be able to get a block that does not exist.")
	}

	if err := m.Reset(); err != nil {
		t.Fatalf("Should be able to reset: %v", err)
	}
	if _, err := m.GetBlock(0); err == nil {
		t.Fatal("Should have no blocks after a reset.")
	}
	if err := m.Write(database.Block{Index: 0}); err != nil {
		t.Fatalf("Should be able to write genesis after a reset: %v", err)
	}
}
