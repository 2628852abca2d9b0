package theory

// Transpose shifts the root of text by offset semitones and renders it in
// the given notation. The quality suffix is carried over verbatim.
func Transpose(text string, offset int, notation Notation) string {
	p := Parse(text)
	return NoteAt(p.RootIndex+offset).Name(notation) + p.Quality
}

// Canonical re-spells the root of text through the note table.
func Canonical(text string) string {
	return Transpose(text, 0, Letter)
}

// ChordNotes returns the pitch classes of text transposed by offset, in
// ascending interval order with duplicates removed. Unknown qualities
// resolve as major triads.
func ChordNotes(text string, offset int) []int {
	p := Parse(text)
	root := NormalizeIndex(p.RootIndex + offset)
	qi, _ := ResolveQuality(p.Quality)
	out := make([]int, 0, len(qi.Intervals))
	seen := make(map[int]bool, len(qi.Intervals))
	for _, iv := range qi.Intervals {
		pc := (root + iv) % 12
		if seen[pc] {
			continue
		}
		seen[pc] = true
		out = append(out, pc)
	}
	return out
}

// Voicing returns root-relative semitones for a close voicing: the
// transposed root index plus each unreduced interval.
func Voicing(text string, offset int) []int {
	p := Parse(text)
	root := NormalizeIndex(p.RootIndex + offset)
	qi, _ := ResolveQuality(p.Quality)
	out := make([]int, len(qi.Intervals))
	for i, iv := range qi.Intervals {
		out[i] = root + iv
	}
	return out
}
