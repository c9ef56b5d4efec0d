package types

type testTable map[string]TypeConsIndex

func (t testTable) TypeCons(name string) (TypeConsIndex, bool) {
	index, ok := t[name]
	return index, ok
}

func traitOf(name string, supers ...string) *TraitIndex {
	index := &TraitIndex{Name: name}
	for _, super := range supers {
		index.Extends = append(index.Extends, ExtendsClause{Super: Trait(super)})
	}
	return index
}

// latticeTable declares A <- B <- C and A <- D <- E, plus a few
// parametric traits and aliases
func latticeTable() testTable {
	return testTable{
		"A":    traitOf("A"),
		"B":    traitOf("B", "A"),
		"C":    traitOf("C", "B"),
		"D":    traitOf("D", "A"),
		"E":    traitOf("E", "D"),
		"X":    traitOf("X", "C"),
		"P":    traitOf("P", "Q"),
		"Q":    traitOf("Q", "P"),
		"List": &TraitIndex{Name: "List", Params: []StaticParam{TypeParam("T")}},
		"Vec":  &TraitIndex{Name: "Vec", Params: []StaticParam{{Name: "n", Kind: KindNat}}},
		"Qty":  &TraitIndex{Name: "Qty", Params: []StaticParam{{Name: "d", Kind: KindDim}}},
		"Pair": &AliasIndex{
			Name:   "Pair",
			Params: []StaticParam{TypeParam("T")},
			Target: Tuple(VarType{Name: "T"}, VarType{Name: "T"}),
		},
		"Loop": &AliasIndex{Name: "Loop", Target: Trait("Loop")},
	}
}

var (
	tyA = Trait("A")
	tyB = Trait("B")
	tyC = Trait("C")
	tyD = Trait("D")
	tyE = Trait("E")
	tyX = Trait("X")
)

func newTestAnalyzer() *TypeAnalyzer {
	return NewAnalyzer(latticeTable(), DefaultOptions())
}

func ivar(id uint64) InferenceVar {
	return InferenceVar{ID: id}
}

func listOf(t Type) TraitType {
	return Trait("List", TypeArg{Type: t})
}
