// Package taxonomy holds the static table of source subject categories.
// The table is loaded once at process start and passed to the components
// that need it; nothing here is mutable after init.
package taxonomy

// categoriesByArchive lists every active subject category, grouped by archive.
var categoriesByArchive = map[string][]string{
	"cs": {
		"cs.AI", "cs.AR", "cs.CC", "cs.CE", "cs.CG", "cs.CL", "cs.CR",
		"cs.CV", "cs.CY", "cs.DB", "cs.DC", "cs.DL", "cs.DM", "cs.DS",
		"cs.ET", "cs.FL", "cs.GL", "cs.GR", "cs.GT", "cs.HC", "cs.IR",
		"cs.IT", "cs.LG", "cs.LO", "cs.MA", "cs.MM", "cs.MS", "cs.NA",
		"cs.NE", "cs.NI", "cs.OH", "cs.OS", "cs.PF", "cs.PL", "cs.RO",
		"cs.SC", "cs.SD", "cs.SE", "cs.SI", "cs.SY",
	},
	"econ": {
		"econ.EM", "econ.GN", "econ.TH",
	},
	"eess": {
		"eess.AS", "eess.IV", "eess.SP", "eess.SY",
	},
	"math": {
		"math.AC", "math.AG", "math.AP", "math.AT", "math.CA", "math.CO",
		"math.CT", "math.CV", "math.DG", "math.DS", "math.FA", "math.GM",
		"math.GN", "math.GR", "math.GT", "math.HO", "math.IT", "math.KT",
		"math.LO", "math.MG", "math.MP", "math.NA", "math.NT", "math.OA",
		"math.OC", "math.PR", "math.QA", "math.RA", "math.RT", "math.SG",
		"math.SP", "math.ST",
	},
	"physics": {
		"astro-ph.CO", "astro-ph.EP", "astro-ph.GA", "astro-ph.HE",
		"astro-ph.IM", "astro-ph.SR",
		"cond-mat.dis-nn", "cond-mat.mes-hall", "cond-mat.mtrl-sci",
		"cond-mat.other", "cond-mat.quant-gas", "cond-mat.soft",
		"cond-mat.stat-mech", "cond-mat.str-el", "cond-mat.supr-con",
		"gr-qc",
		"hep-ex", "hep-lat", "hep-ph", "hep-th",
		"math-ph",
		"nlin.AO", "nlin.CD", "nlin.CG", "nlin.PS", "nlin.SI",
		"nucl-ex", "nucl-th",
		"physics.acc-ph", "physics.ao-ph", "physics.app-ph",
		"physics.atm-clus", "physics.atom-ph", "physics.bio-ph",
		"physics.chem-ph", "physics.class-ph", "physics.comp-ph",
		"physics.data-an", "physics.ed-ph", "physics.flu-dyn",
		"physics.gen-ph", "physics.geo-ph", "physics.hist-ph",
		"physics.ins-det", "physics.med-ph", "physics.optics",
		"physics.plasm-ph", "physics.pop-ph", "physics.soc-ph",
		"physics.space-ph",
		"quant-ph",
	},
	"q-bio": {
		"q-bio.BM", "q-bio.CB", "q-bio.GN", "q-bio.MN", "q-bio.NC",
		"q-bio.OT", "q-bio.PE", "q-bio.QM", "q-bio.SC", "q-bio.TO",
	},
	"q-fin": {
		"q-fin.CP", "q-fin.EC", "q-fin.GN", "q-fin.MF", "q-fin.PM",
		"q-fin.PR", "q-fin.RM", "q-fin.ST", "q-fin.TR",
	},
	"stat": {
		"stat.AP", "stat.CO", "stat.ME", "stat.ML", "stat.OT", "stat.TH",
	},
}

// Taxonomy is an immutable lookup over the category table.
type Taxonomy struct {
	all   []string
	known map[string]struct{}
}

// Load builds the taxonomy from the static table.
func Load() *Taxonomy {
	t := &Taxonomy{known: make(map[string]struct{})}
	for _, cats := range categoriesByArchive {
		for _, c := range cats {
			t.known[c] = struct{}{}
		}
	}
	for c := range t.known {
		t.all = append(t.all, c)
	}
	return t
}

// Known reports whether the category appears in the table. Historical
// records can carry retired archive names, so callers should treat an
// unknown category as a warning rather than a hard failure.
func (t *Taxonomy) Known(category string) bool {
	_, ok := t.known[category]
	return ok
}

// All returns every known category. The returned slice must not be mutated.
func (t *Taxonomy) All() []string {
	return t.all
}

// Count returns the number of known categories.
func (t *Taxonomy) Count() int {
	return len(t.known)
}
