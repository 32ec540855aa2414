package orchestration

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestParsePartition(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Partition
		wantErr bool
	}{
		{"", PartitionModulo, false},
		{"modulo", PartitionModulo, false},
		{" Chunk ", PartitionChunk, false},
		{"random", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePartition(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePartition(%q) error = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParsePartition(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if PartitionChunk.String() != "chunk" || PartitionModulo.String() != "modulo" {
		t.Error("String() does not round-trip")
	}
}

func TestPartition_Assign(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name              string
		p                 Partition
		total, rank, size int
		want              []int
	}{
		{"modulo first", PartitionModulo, 10, 0, 3, []int{0, 3, 6, 9}},
		{"modulo last", PartitionModulo, 10, 2, 3, []int{2, 5, 8}},
		{"chunk gets remainder", PartitionChunk, 10, 0, 3, []int{0, 1, 2, 3}},
		{"chunk tail", PartitionChunk, 10, 2, 3, []int{7, 8, 9}},
		{"idle rank", PartitionChunk, 2, 3, 4, []int{}},
		{"bad rank", PartitionModulo, 10, 3, 3, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.p.Assign(tt.total, tt.rank, tt.size)
			if len(got) != len(tt.want) {
				t.Fatalf("Assign = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Assign = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

// TestPartition_ExactCover_PropertyBased verifies that for both schemes
// every pair index is owned by exactly one rank.
func TestPartition_ExactCover_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	for _, p := range []Partition{PartitionModulo, PartitionChunk} {
		properties.Property(p.String()+" covers every index once", prop.ForAll(
			func(total, size int) bool {
				seen := make([]int, total)
				for r := 0; r < size; r++ {
					for _, k := range p.Assign(total, r, size) {
						if k < 0 || k >= total {
							return false
						}
						seen[k]++
					}
				}
				for _, n := range seen {
					if n != 1 {
						return false
					}
				}
				return true
			},
			gen.IntRange(1, 500),
			gen.IntRange(1, 40),
		))
	}

	properties.TestingRun(t)
}
