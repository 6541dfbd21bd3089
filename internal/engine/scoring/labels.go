package scoring

// Band is one of the five fixed severity bands. Bands are ordered from the
// highest floor down and cover [0,100] without gaps.
type Band struct {
	Floor int    `json:"floor"`
	Label string `json:"label"`
	Color string `json:"color"`
}

const (
	HighRiskFloor   = 60
	MediumRiskFloor = 40
)

var bands = []Band{
	{Floor: 80, Label: "EXTREMELY VIBED", Color: "red"},
	{Floor: HighRiskFloor, Label: "HEAVILY VIBED", Color: "red"},
	{Floor: MediumRiskFloor, Label: "MODERATELY VIBED", Color: "yellow"},
	{Floor: 20, Label: "SLIGHTLY VIBED", Color: "yellow"},
	{Floor: 0, Label: "MOSTLY HUMAN", Color: "green"},
}

// BandFor maps a final score to its band. Out-of-range scores are clamped.
func BandFor(score int) Band {
	score = clampInt(score)
	for _, b := range bands {
		if score >= b.Floor {
			return b
		}
	}
	return bands[len(bands)-1]
}

// Bands returns the band table, highest first.
func Bands() []Band {
	out := make([]Band, len(bands))
	copy(out, bands)
	return out
}

func clampInt(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
