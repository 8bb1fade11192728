// Package species defines the closed set of cell species and their
// constant tables. The set is fixed and finite; per-species constants
// are looked up by Kind, never dispatched at runtime.
package species

import "github.com/pthm-cable/petri/config"

// Kind identifies one of the fixed species.
type Kind uint8

const (
	A Kind = iota
	B
	C

	// KindCount is the number of species variants.
	KindCount
)

// String returns the configured-order species name.
func (k Kind) String() string {
	switch k {
	case A:
		return "a"
	case B:
		return "b"
	case C:
		return "c"
	}
	return "unknown"
}

// Next returns the successor in the fixed mutation cycle A→B→C→A.
func (k Kind) Next() Kind {
	return (k + 1) % KindCount
}

// Params holds the full constant set for one species.
type Params struct {
	Name string

	Mu            float64 // Spring constant
	MuHet         float64 // Heterotypic stiffness factor
	Drag          float64 // Drag coefficient eta
	MatureLength  float64 // Resting length s_mature
	ExpansionRate float64 // Resting length epsilon at t=0
	Diffusivity   float64 // Thermal diffusivity xi
	Cutoff        float64 // Interaction cutoff l_max

	ProlifRate   float64 // Growth rate beta
	CarryingK    float64 // Carrying capacity density K
	DivideMinAge float64 // Division window t_min
	DivideMaxAge float64 // Division window t_max
	MinArea      float64 // Minimum region area A_min

	MaxAge       float64 // d_max
	SickRate     float64 // p_sick
	MutationProb float64 // p_mut
}

// Table maps each Kind to its constants.
type Table [KindCount]Params

// PairParams holds the symmetric constants governing one species pair.
type PairParams struct {
	Mu            float64
	MuHet         float64
	MatureLength  float64
	ExpansionRate float64
	Cutoff        float64
}

// FromConfig builds the species table from configured entries.
// Missing trailing entries reuse the last configured species so the
// table is always fully populated.
func FromConfig(cfgs []config.SpeciesConfig) Table {
	var t Table
	for k := Kind(0); k < KindCount; k++ {
		i := int(k)
		if i >= len(cfgs) {
			i = len(cfgs) - 1
		}
		sp := cfgs[i]
		t[k] = Params{
			Name:          sp.Name,
			Mu:            sp.Mu,
			MuHet:         sp.MuHet,
			Drag:          sp.Drag,
			MatureLength:  sp.MatureLength,
			ExpansionRate: sp.ExpansionRate,
			Diffusivity:   sp.Diffusivity,
			Cutoff:        sp.Cutoff,
			ProlifRate:    sp.ProlifRate,
			CarryingK:     sp.CarryingK,
			DivideMinAge:  sp.DivideMinAge,
			DivideMaxAge:  sp.DivideMaxAge,
			MinArea:       sp.MinArea,
			MaxAge:        sp.MaxAge,
			SickRate:      sp.SickRate,
			MutationProb:  sp.MutationProb,
		}
	}
	return t
}

// Pairs precomputes pairwise spring constants for every species pair.
// Stiffness factors average across the pair; lengths and cutoff take
// the pair minimum so neither species is stretched past its own law.
func (t *Table) Pairs() [KindCount][KindCount]PairParams {
	var pairs [KindCount][KindCount]PairParams
	for a := Kind(0); a < KindCount; a++ {
		for b := Kind(0); b < KindCount; b++ {
			pa, pb := t[a], t[b]
			pairs[a][b] = PairParams{
				Mu:            (pa.Mu + pb.Mu) / 2,
				MuHet:         (pa.MuHet + pb.MuHet) / 2,
				MatureLength:  min(pa.MatureLength, pb.MatureLength),
				ExpansionRate: min(pa.ExpansionRate, pb.ExpansionRate),
				Cutoff:        min(pa.Cutoff, pb.Cutoff),
			}
		}
	}
	return pairs
}
