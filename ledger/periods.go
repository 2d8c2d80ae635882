package ledger

// ValuationDates returns the set of dates on which the period-starting NAV
// resets: the first occurrence, in calendar order, of each distinct
// (year, month) among the known dates, plus every override date.
//
// Purely a function of its inputs. The first-of-month rule is well defined
// once dates are compared by calendar value rather than insertion order.
func ValuationDates(known []Date, overrides []Date) map[Date]bool {
	sorted := make([]Date, len(known))
	copy(sorted, known)
	SortDates(sorted)

	out := make(map[Date]bool, len(overrides))
	seen := make(map[YearMonth]bool)
	for _, d := range sorted {
		ym := d.YearMonth()
		if !seen[ym] {
			seen[ym] = true
			out[d] = true
		}
	}
	for _, d := range overrides {
		out[d] = true
	}
	return out
}
