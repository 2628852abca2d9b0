package theory

// Quality enumerates the chord types with known interval structures.
type Quality int

const (
	Major Quality = iota
	Minor
	Dominant7
	Major7
	Minor7
	Sus2
	Sus4
	Power
	Major6
	Minor6
	Diminished
	Augmented
	Dominant9
	Add9
	Diminished7
	HalfDiminished
)

// QualityInfo is the table entry for a quality.
type QualityInfo struct {
	Quality   Quality `json:"-"`
	Suffix    string  `json:"suffix"`
	Name      string  `json:"name"`
	Intervals []int   `json:"intervals"`
}

// Intervals are semitones above the root and may exceed 11.
var qualityTable = []QualityInfo{
	{Major, "", "Major", []int{0, 4, 7}},
	{Minor, "m", "Minor", []int{0, 3, 7}},
	{Dominant7, "7", "Dominant 7th", []int{0, 4, 7, 10}},
	{Major7, "maj7", "Major 7th", []int{0, 4, 7, 11}},
	{Minor7, "m7", "Minor 7th", []int{0, 3, 7, 10}},
	{Sus2, "sus2", "Suspended 2nd", []int{0, 2, 7}},
	{Sus4, "sus4", "Suspended 4th", []int{0, 5, 7}},
	{Power, "5", "Power Chord", []int{0, 7}},
	{Major6, "6", "Major 6th", []int{0, 4, 7, 9}},
	{Minor6, "m6", "Minor 6th", []int{0, 3, 7, 9}},
	{Diminished, "dim", "Diminished", []int{0, 3, 6}},
	{Augmented, "aug", "Augmented", []int{0, 4, 8}},
	{Dominant9, "9", "Dominant 9th", []int{0, 4, 7, 10, 14}},
	{Add9, "add9", "Added 9th", []int{0, 4, 7, 14}},
	{Diminished7, "dim7", "Diminished 7th", []int{0, 3, 6, 9}},
	{HalfDiminished, "m7b5", "Half-Diminished", []int{0, 3, 6, 10}},
}

var qualityBySuffix = func() map[string]int {
	m := make(map[string]int, len(qualityTable))
	for i, q := range qualityTable {
		m[q.Suffix] = i
	}
	return m
}()

// Suffix returns the chord-symbol suffix, "" for major.
func (q Quality) Suffix() string { return q.info().Suffix }

// Name returns the display name, e.g. "Minor 7th".
func (q Quality) Name() string { return q.info().Name }

// Intervals returns a copy of the semitone intervals.
func (q Quality) Intervals() []int { return q.info().clone().Intervals }

func (q Quality) info() QualityInfo {
	if q < 0 || int(q) >= len(qualityTable) {
		return qualityTable[Major]
	}
	return qualityTable[q]
}

func (qi QualityInfo) clone() QualityInfo {
	qi.Intervals = append([]int(nil), qi.Intervals...)
	return qi
}

// LookupQuality finds a quality by its exact suffix.
func LookupQuality(suffix string) (QualityInfo, bool) {
	i, ok := qualityBySuffix[suffix]
	if !ok {
		return QualityInfo{}, false
	}
	return qualityTable[i].clone(), true
}

// ResolveQuality is LookupQuality with the major triad as the fallback for
// unknown suffixes. The bool reports whether the suffix was recognized.
func ResolveQuality(suffix string) (QualityInfo, bool) {
	if qi, ok := LookupQuality(suffix); ok {
		return qi, true
	}
	return qualityTable[Major].clone(), false
}

// Qualities returns every known quality in table order.
func Qualities() []QualityInfo {
	out := make([]QualityInfo, len(qualityTable))
	for i, q := range qualityTable {
		out[i] = q.clone()
	}
	return out
}
