package vocab

import "math/rand"

// Anchor returns the fixed high-frequency pool: the first poolSize corpus
// words. These are reinforced in every level's shared context.
func (c Corpus) Anchor(poolSize int) []string {
	if poolSize > len(c) {
		poolSize = len(c)
	}
	if poolSize <= 0 {
		return nil
	}
	return c[:poolSize]
}

// Legacy samples previously-introduced words for spaced repetition: a
// uniform draw without replacement from corpus[:windowStart], at most
// poolSize words. Until a full first batch exists (windowStart < batchSize)
// there is no history to draw from and the result is nil.
//
// The random source is injected so tests can seed it; the driver owns the
// pipeline-level source.
func (c Corpus) Legacy(windowStart, batchSize, poolSize int, rng *rand.Rand) []string {
	if windowStart < batchSize {
		return nil
	}
	if windowStart > len(c) {
		windowStart = len(c)
	}

	n := poolSize
	if n > windowStart {
		n = windowStart
	}
	if n <= 0 {
		return nil
	}

	picked := rng.Perm(windowStart)[:n]
	words := make([]string, 0, n)
	for _, idx := range picked {
		words = append(words, c[idx])
	}
	return words
}
