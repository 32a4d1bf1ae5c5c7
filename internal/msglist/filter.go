package msglist

// FilterFunc returns true when a message should be kept.
type FilterFunc func(string) bool

// Filter returns the messages accepted by every filter, preserving order.
func Filter(msgs []string, filters ...FilterFunc) []string {
	out := make([]string, 0, len(msgs))
next:
	for _, msg := range msgs {
		for _, keep := range filters {
			if !keep(msg) {
				continue next
			}
		}
		out = append(out, msg)
	}
	return out
}

// SkipExisting drops messages already present in existing and
// duplicates within the same batch.
func SkipExisting(existing []string) FilterFunc {
	seen := make(map[string]struct{}, len(existing))
	for _, msg := range existing {
		seen[msg] = struct{}{}
	}
	return func(msg string) bool {
		if _, ok := seen[msg]; ok {
			return false
		}
		seen[msg] = struct{}{}
		return true
	}
}

// MaxRunes drops messages longer than n runes. n <= 0 keeps everything.
func MaxRunes(n int) FilterFunc {
	return func(msg string) bool {
		if n <= 0 {
			return true
		}
		count := 0
		for range msg {
			count++
			if count > n {
				return false
			}
		}
		return true
	}
}
