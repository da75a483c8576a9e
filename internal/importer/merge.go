package importer

// MergeInfluencers de-duplicates records by NameKey, keeping first-seen order
// and the first record's spelling of the name. Later records fill empty
// fields; the larger rate and the larger follower count win. Callers pass
// tracker records before roster records.
func MergeInfluencers(records []InfluencerRecord) []InfluencerRecord {
	index := make(map[string]int, len(records))
	out := make([]InfluencerRecord, 0, len(records))

	for _, rec := range records {
		key := NameKey(rec.Name)
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, rec)
			continue
		}

		existing := &out[i]
		existing.Handle = firstSet(existing.Handle, rec.Handle)
		existing.Email = firstSet(existing.Email, rec.Email)
		existing.Platform = firstSet(existing.Platform, rec.Platform)
		existing.ContentType = firstSet(existing.ContentType, rec.ContentType)
		existing.Location = firstSet(existing.Location, rec.Location)
		existing.Rate = larger(existing.Rate, rec.Rate)
		existing.FollowerCount = larger(existing.FollowerCount, rec.FollowerCount)
	}
	return out
}

func firstSet[T comparable](a, b *T) *T {
	var zero T
	if a != nil && *a != zero {
		return a
	}
	return b
}

// larger keeps a unless b is set, non-zero and greater.
func larger[T int64 | float64](a, b *T) *T {
	if b == nil || *b == 0 {
		return a
	}
	if a == nil || *a == 0 || *b > *a {
		return b
	}
	return a
}
