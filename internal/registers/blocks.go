package registers

import "sort"

// Block is a maximal run of consecutive register addresses within one
// space, read in a single batched request.
type Block struct {
	Space Space
	Start uint16
	Defs  []Definition
}

// Count returns the number of registers the block spans.
func (b Block) Count() uint16 {
	return uint16(len(b.Defs))
}

// Blocks partitions the catalog registers of one space into contiguous
// blocks, sorted by address.
func Blocks(space Space) []Block {
	var defs []Definition
	for _, d := range catalog {
		if d.Space == space {
			defs = append(defs, d)
		}
	}
	return partition(space, defs)
}

func partition(space Space, defs []Definition) []Block {
	if len(defs) == 0 {
		return nil
	}

	sorted := make([]Definition, len(defs))
	copy(sorted, defs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Address < sorted[j].Address
	})

	var blocks []Block
	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i].Address == sorted[i-1].Address+1 {
			continue
		}
		blocks = append(blocks, Block{
			Space: space,
			Start: sorted[start].Address,
			Defs:  sorted[start:i],
		})
		start = i
	}
	return blocks
}
