package domain

// StateKind distinguishes states from union territories.
type StateKind string

const (
	KindState          StateKind = "state"
	KindUnionTerritory StateKind = "union_territory"
)

// State is an Indian state or union territory as used for GST place of supply.
type State struct {
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Abbreviations []string  `json:"abbreviations"`
	Kind          StateKind `json:"kind"`
}
