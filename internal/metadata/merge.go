package metadata

import "ETFBoard/internal/model"

// Merge overlays the static lookup onto records, drops duplicate codes and
// recomputes the estimated trading value. For a duplicated code the last
// record wins and takes the position of the first. Inputs are not modified.
func Merge(records []model.SecurityRecord, lookup Lookup) []model.SecurityRecord {
	out := make([]model.SecurityRecord, 0, len(records))
	pos := make(map[string]int, len(records))

	for _, r := range records {
		if md, ok := lookup[r.Code]; ok {
			r = apply(r, md)
		}
		r = r.WithTradingValue()

		if i, seen := pos[r.Code]; seen {
			out[i] = r
			continue
		}
		pos[r.Code] = len(out)
		out = append(out, r)
	}
	return out
}

// apply keeps the record's value where the lookup entry leaves a field blank.
func apply(r model.SecurityRecord, md model.Metadata) model.SecurityRecord {
	if md.Provider != "" {
		r.Provider = md.Provider
	}
	if md.Fee != 0 {
		r.Fee = md.Fee
	}
	if md.Sector != "" {
		r.Sector = md.Sector
	}
	if md.ListingDate != "" {
		r.ListingDate = md.ListingDate
	}
	return r
}
