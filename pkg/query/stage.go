package query

import "iter"

// Stage post-processes the ordered results of a query. Stages run after
// projection and see neither stale nor skipped hits.
type Stage func(iter.Seq2[Item, error]) iter.Seq2[Item, error]

// Map transforms every item. An error from fn ends the sequence.
func Map(fn func(Item) (Item, error)) Stage {
	return func(seq iter.Seq2[Item, error]) iter.Seq2[Item, error] {
		return func(yield func(Item, error) bool) {
			for item, err := range seq {
				if err != nil {
					yield(Item{}, err)
					return
				}
				out, err := fn(item)
				if err != nil {
					yield(Item{}, err)
					return
				}
				if !yield(out, nil) {
					return
				}
			}
		}
	}
}

// Filter keeps the items for which keep returns true
func Filter(keep func(Item) bool) Stage {
	return func(seq iter.Seq2[Item, error]) iter.Seq2[Item, error] {
		return func(yield func(Item, error) bool) {
			for item, err := range seq {
				if err == nil && !keep(item) {
					continue
				}
				if !yield(item, err) || err != nil {
					return
				}
			}
		}
	}
}

// Limit stops the scan after n items
func Limit(n int) Stage {
	return func(seq iter.Seq2[Item, error]) iter.Seq2[Item, error] {
		return func(yield func(Item, error) bool) {
			if n <= 0 {
				return
			}
			count := 0
			for item, err := range seq {
				if !yield(item, err) || err != nil {
					return
				}
				count++
				if count >= n {
					return
				}
			}
		}
	}
}
