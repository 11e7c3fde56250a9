package ridership

// Filter returns the records matching the selection, in input order.
// A wildcard selection matches a record served by any line of its category.
func Filter(records []Record, sel Selection) []Record {
	lines := sel.Lines()
	var pool []Record
	for _, r := range records {
		for _, l := range lines {
			if r.Serves(l) {
				pool = append(pool, r)
				break
			}
		}
	}
	return pool
}

// Named drops records without a station name. Such rows survive parsing
// but cannot be shown to a player.
func Named(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Station != "" {
			out = append(out, r)
		}
	}
	return out
}
