package tf

// Run is a stretch of consecutive node records whose nodes share one object type.
// IDs and Values are parallel.
type Run struct {
	Type   string
	IDs    []uint64
	Values []any
}

// Partition splits recs into runs of the same object type, keeping their order.
//
// Each record is checked against the bounds of the current run's range
// and the type is looked up again only when it falls outside,
// so sorted input costs one lookup per type
// while unsorted input is still split correctly, just into more runs.
// A node outside every range yields a *LookupError.
func Partition(recs []NodeRecord, reg *Registry) ([]Run, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	cur, err := reg.TypeOf(recs[0].ID)
	if err != nil {
		return nil, err
	}

	var runs []Run
	run := Run{Type: cur.Label}
	for _, rec := range recs {
		if !cur.Contains(rec.ID) {
			if cur, err = reg.TypeOf(rec.ID); err != nil {
				return nil, err
			}
			if cur.Label != run.Type {
				runs = append(runs, run)
				run = Run{Type: cur.Label}
			}
		}
		run.IDs = append(run.IDs, rec.ID)
		run.Values = append(run.Values, rec.Value)
	}
	return append(runs, run), nil
}
