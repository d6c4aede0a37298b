package analysis

import "hermannm.dev/enumnames"

type FieldKind uint8

const (
	FieldKindNumber FieldKind = iota + 1
	FieldKindBoolean
	FieldKindDate
	FieldKindString
)

var fieldKindMap = enumnames.NewMap(map[FieldKind]string{
	FieldKindNumber:  "NUMBER",
	FieldKindBoolean: "BOOLEAN",
	FieldKindDate:    "DATE",
	FieldKindString:  "STRING",
})

func (kind FieldKind) IsValid() bool {
	return fieldKindMap.ContainsEnumValue(kind)
}

func (kind FieldKind) String() string {
	return fieldKindMap.GetNameOrFallback(kind, "INVALID_FIELD_KIND")
}

func (kind FieldKind) MarshalJSON() ([]byte, error) {
	return fieldKindMap.MarshalToNameJSON(kind)
}

func (kind *FieldKind) UnmarshalJSON(bytes []byte) error {
	return fieldKindMap.UnmarshalFromNameJSON(bytes, kind)
}
