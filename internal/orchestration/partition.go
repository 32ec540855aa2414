package orchestration

import (
	"fmt"
	"strings"
	"time"

	"github.com/agbru/distcalc/internal/matrix"
)

// Partition decides which pair indices a rank owns.
type Partition int

const (
	// PartitionModulo assigns pair k to rank k mod size.
	PartitionModulo Partition = iota
	// PartitionChunk assigns contiguous blocks of pairs, the first
	// total mod size ranks receiving one extra pair.
	PartitionChunk
)

// ParsePartition resolves "modulo" or "chunk".
func ParsePartition(s string) (Partition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "modulo", "":
		return PartitionModulo, nil
	case "chunk":
		return PartitionChunk, nil
	}
	return 0, fmt.Errorf("unknown partition %q", s)
}

func (p Partition) String() string {
	if p == PartitionChunk {
		return "chunk"
	}
	return "modulo"
}

// Assign returns the pair indices owned by rank out of total pairs split
// over size ranks. Every index in [0, total) belongs to exactly one rank.
func (p Partition) Assign(total, rank, size int) []int {
	if size < 1 || rank < 0 || rank >= size || total <= 0 {
		return nil
	}
	if p == PartitionChunk {
		base, rem := total/size, total%size
		start := rank*base + min(rank, rem)
		n := base
		if rank < rem {
			n++
		}
		out := make([]int, n)
		for i := range out {
			out[i] = start + i
		}
		return out
	}
	out := make([]int, 0, (total+size-1)/size)
	for k := rank; k < total; k += size {
		out = append(out, k)
	}
	return out
}

// Partial is the result of one rank.
type Partial struct {
	Rank    int
	Size    int
	Entries []matrix.Entry
	Elapsed time.Duration
}
