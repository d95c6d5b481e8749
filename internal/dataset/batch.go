package dataset

import (
	"math/rand"

	"frameset/internal/domain"
)

// Batcher serves the corpus in fixed-size batches, optionally
// shuffled. Shuffling uses an explicit seed so epochs are reproducible
// across runs. The final batch of an epoch may be short.
type Batcher struct {
	ds        *Dataset
	batchSize int
	shuffle   bool
	rng       *rand.Rand
	order     []int
	pos       int
}

// NewBatcher creates a batcher over ds. batchSize must be at least 1;
// config validation enforces this before construction.
func NewBatcher(ds *Dataset, batchSize int, shuffle bool, seed int64) *Batcher {
	b := &Batcher{
		ds:        ds,
		batchSize: batchSize,
		shuffle:   shuffle,
		rng:       rand.New(rand.NewSource(seed)),
		order:     make([]int, ds.Len()),
	}
	for i := range b.order {
		b.order[i] = i
	}
	if shuffle {
		b.reshuffle()
	}
	return b
}

// Next returns the next batch of the current epoch, or nil when the
// epoch is exhausted. Call Reset to start a new epoch.
func (b *Batcher) Next() []domain.Example {
	if b.pos >= len(b.order) {
		return nil
	}

	end := b.pos + b.batchSize
	if end > len(b.order) {
		end = len(b.order)
	}

	batch := make([]domain.Example, 0, end-b.pos)
	for _, idx := range b.order[b.pos:end] {
		ex, err := b.ds.Get(idx)
		if err != nil {
			// Unreachable: order only holds indices in [0, Len).
			panic(err)
		}
		batch = append(batch, ex)
	}
	b.pos = end
	return batch
}

// Reset starts a new epoch, reshuffling if shuffle is enabled.
func (b *Batcher) Reset() {
	b.pos = 0
	if b.shuffle {
		b.reshuffle()
	}
}

// Batches returns the number of batches per epoch.
func (b *Batcher) Batches() int {
	n := b.ds.Len()
	return (n + b.batchSize - 1) / b.batchSize
}

func (b *Batcher) reshuffle() {
	b.rng.Shuffle(len(b.order), func(i, j int) {
		b.order[i], b.order[j] = b.order[j], b.order[i]
	})
}
