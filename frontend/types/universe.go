package types

const (
	ObjectName = "Object"
	MatrixName = "Matrix"
)

// ObjectType is the supertype of every trait type
var ObjectType = TraitType{Name: ObjectName}

var arrayNames = []string{"Array1", "Array2", "Array3"}

// builtinTraits are known to every analyzer, even when its table omits them
var builtinTraits = map[string]*TraitIndex{
	ObjectName: {Name: ObjectName},
	MatrixName: {
		Name:    MatrixName,
		Params:  []StaticParam{TypeParam("T"), {Name: "s0", Kind: KindNat}, {Name: "s1", Kind: KindNat}},
		Extends: []ExtendsClause{{Super: ObjectType}},
	},
}

func init() {
	for dims, name := range arrayNames {
		params := []StaticParam{TypeParam("T")}
		for i := 0; i <= dims; i++ {
			params = append(params,
				StaticParam{Name: "b" + string(rune('0'+i)), Kind: KindInt},
				StaticParam{Name: "s" + string(rune('0'+i)), Kind: KindNat},
			)
		}
		builtinTraits[name] = &TraitIndex{
			Name:    name,
			Params:  params,
			Extends: []ExtendsClause{{Super: ObjectType}},
		}
	}
}
