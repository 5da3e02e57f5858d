package model

// The model has a single synthetic compartment; MetaCyc compounds carry none.
var SystemCompartment = Compartment{ID: "s", Name: "system"}

type Annotation struct {
	Mets    []Metabolite
	B       []float64
	Comps   []Compartment
	Matched int
}

// metField describes one annotation column: how to read it from the reference
// entry, how to read and write it on a metabolite, and what counts as missing.
type metField[T any] struct {
	fromRef func(ReferenceMetabolite) T
	get     func(*Metabolite) T
	set     func(*Metabolite, T)
	missing func(T) bool
}

// mergeField fills every metabolite whose field is missing, from the reference
// table when it has a value, otherwise with def. Present values are kept.
func mergeField[T any](mets []Metabolite, table *ReferenceMetaboliteTable, f metField[T], def T) {
	for i := range mets {
		m := &mets[i]
		if !f.missing(f.get(m)) {
			continue
		}
		if ref, ok := table.Lookup(m.ID); ok {
			if v := f.fromRef(ref); !f.missing(v) {
				f.set(m, v)
				continue
			}
		}
		f.set(m, def)
	}
}

func emptyString(s string) bool { return s == "" }

func stringField(from func(ReferenceMetabolite) string, get func(*Metabolite) *string) metField[string] {
	return metField[string]{
		fromRef: from,
		get:     func(m *Metabolite) string { return *get(m) },
		set:     func(m *Metabolite, v string) { *get(m) = v },
		missing: emptyString,
	}
}

var (
	nameField    = stringField(func(r ReferenceMetabolite) string { return r.Name }, func(m *Metabolite) *string { return &m.Name })
	formulaField = stringField(func(r ReferenceMetabolite) string { return r.Formula }, func(m *Metabolite) *string { return &m.Formula })
	inchiField   = stringField(func(r ReferenceMetabolite) string { return r.InChI }, func(m *Metabolite) *string { return &m.InChI })

	chargeField = metField[int]{
		fromRef: func(r ReferenceMetabolite) int { return r.Charge },
		get:     func(m *Metabolite) int { return m.Charge },
		set:     func(m *Metabolite, v int) { m.Charge = v },
		missing: func(v int) bool { return v == 0 },
	}

	xrefField = metField[[]string]{
		fromRef: func(r ReferenceMetabolite) []string { return append([]string(nil), r.Xrefs...) },
		get:     func(m *Metabolite) []string { return m.Xrefs },
		set:     func(m *Metabolite, v []string) { m.Xrefs = v },
		missing: func(v []string) bool { return len(v) == 0 },
	}
)

// AnnotateMetabolites joins ids against the reference table. Unknown ids are
// normal and get empty fields; a metabolite left without a name is named
// after its id.
func AnnotateMetabolites(ids []string, table *ReferenceMetaboliteTable) Annotation {
	mets := make([]Metabolite, len(ids))
	matched := 0
	for i, id := range ids {
		mets[i] = Metabolite{ID: id, Compartment: SystemCompartment.ID}
		if _, ok := table.Lookup(id); ok {
			matched++
		}
	}

	mergeField(mets, table, nameField, "")
	mergeField(mets, table, formulaField, "")
	mergeField(mets, table, chargeField, 0)
	mergeField(mets, table, inchiField, "")
	mergeField(mets, table, xrefField, []string{})

	for i := range mets {
		if mets[i].Name == "" {
			mets[i].Name = mets[i].ID
		}
	}

	return Annotation{
		Mets:    mets,
		B:       make([]float64, len(mets)),
		Comps:   []Compartment{SystemCompartment},
		Matched: matched,
	}
}
