package subtrans

// PartitionBatches greedily groups unique pending texts into batches of at
// most maxBatchSize. Texts must already be deduplicated; positions[i] lists
// the original request indices text i maps back to. Output order follows
// input order, so partitioning is deterministic and every text lands in
// exactly one batch.
func PartitionBatches(texts []string, positions [][]int, targetLang string, maxBatchSize int) []Batch {
	if len(texts) == 0 {
		return nil
	}
	if maxBatchSize <= 0 {
		maxBatchSize = DefaultMaxBatchSize
	}

	batches := make([]Batch, 0, (len(texts)+maxBatchSize-1)/maxBatchSize)
	for start := 0; start < len(texts); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batches = append(batches, Batch{
			TargetLang: targetLang,
			Texts:      texts[start:end],
			Positions:  positions[start:end],
		})
	}

	return batches
}
