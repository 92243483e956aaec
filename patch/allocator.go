package patch

// NextNumber returns the smallest sequence number greater than every
// numbered patch file in dir, or 1 when there are none.
func NextNumber(dir string) (int, error) {
	entries, err := Scan(dir)
	if err != nil {
		return 0, err
	}
	return nextAfter(entries), nil
}

func nextAfter(entries []Entry) int {
	highest := 0
	for _, e := range entries {
		if e.Number > highest {
			highest = e.Number
		}
	}
	return highest + 1
}
