package domain

import (
	"strings"
)

// States lists GST state codes in ascending order. Code 25 was folded into 26
// when Daman and Diu merged with Dadra and Nagar Haveli; 28 is the old Andhra
// Pradesh code and is kept only as an alias.
var States = []State{
	{Code: "01", Name: "Jammu and Kashmir", Abbreviations: []string{"JK"}, Kind: KindUnionTerritory},
	{Code: "02", Name: "Himachal Pradesh", Abbreviations: []string{"HP"}, Kind: KindState},
	{Code: "03", Name: "Punjab", Abbreviations: []string{"PB"}, Kind: KindState},
	{Code: "04", Name: "Chandigarh", Abbreviations: []string{"CH"}, Kind: KindUnionTerritory},
	{Code: "05", Name: "Uttarakhand", Abbreviations: []string{"UK", "UT", "Uttaranchal"}, Kind: KindState},
	{Code: "06", Name: "Haryana", Abbreviations: []string{"HR"}, Kind: KindState},
	{Code: "07", Name: "Delhi", Abbreviations: []string{"DL", "New Delhi", "NCT of Delhi"}, Kind: KindUnionTerritory},
	{Code: "08", Name: "Rajasthan", Abbreviations: []string{"RJ"}, Kind: KindState},
	{Code: "09", Name: "Uttar Pradesh", Abbreviations: []string{"UP"}, Kind: KindState},
	{Code: "10", Name: "Bihar", Abbreviations: []string{"BR"}, Kind: KindState},
	{Code: "11", Name: "Sikkim", Abbreviations: []string{"SK"}, Kind: KindState},
	{Code: "12", Name: "Arunachal Pradesh", Abbreviations: []string{"AR"}, Kind: KindState},
	{Code: "13", Name: "Nagaland", Abbreviations: []string{"NL"}, Kind: KindState},
	{Code: "14", Name: "Manipur", Abbreviations: []string{"MN"}, Kind: KindState},
	{Code: "15", Name: "Mizoram", Abbreviations: []string{"MZ"}, Kind: KindState},
	{Code: "16", Name: "Tripura", Abbreviations: []string{"TR"}, Kind: KindState},
	{Code: "17", Name: "Meghalaya", Abbreviations: []string{"ML"}, Kind: KindState},
	{Code: "18", Name: "Assam", Abbreviations: []string{"AS"}, Kind: KindState},
	{Code: "19", Name: "West Bengal", Abbreviations: []string{"WB"}, Kind: KindState},
	{Code: "20", Name: "Jharkhand", Abbreviations: []string{"JH"}, Kind: KindState},
	{Code: "21", Name: "Odisha", Abbreviations: []string{"OD", "OR", "Orissa"}, Kind: KindState},
	{Code: "22", Name: "Chhattisgarh", Abbreviations: []string{"CG", "Chattisgarh"}, Kind: KindState},
	{Code: "23", Name: "Madhya Pradesh", Abbreviations: []string{"MP"}, Kind: KindState},
	{Code: "24", Name: "Gujarat", Abbreviations: []string{"GJ"}, Kind: KindState},
	{Code: "26", Name: "Dadra and Nagar Haveli and Daman and Diu", Abbreviations: []string{"DN", "DD", "25", "Daman and Diu", "Dadra and Nagar Haveli"}, Kind: KindUnionTerritory},
	{Code: "27", Name: "Maharashtra", Abbreviations: []string{"MH"}, Kind: KindState},
	{Code: "29", Name: "Karnataka", Abbreviations: []string{"KA"}, Kind: KindState},
	{Code: "30", Name: "Goa", Abbreviations: []string{"GA"}, Kind: KindState},
	{Code: "31", Name: "Lakshadweep", Abbreviations: []string{"LD"}, Kind: KindUnionTerritory},
	{Code: "32", Name: "Kerala", Abbreviations: []string{"KL"}, Kind: KindState},
	{Code: "33", Name: "Tamil Nadu", Abbreviations: []string{"TN"}, Kind: KindState},
	{Code: "34", Name: "Puducherry", Abbreviations: []string{"PY", "Pondicherry"}, Kind: KindUnionTerritory},
	{Code: "35", Name: "Andaman and Nicobar Islands", Abbreviations: []string{"AN"}, Kind: KindUnionTerritory},
	{Code: "36", Name: "Telangana", Abbreviations: []string{"TS", "TG"}, Kind: KindState},
	{Code: "37", Name: "Andhra Pradesh", Abbreviations: []string{"AP", "AD", "28"}, Kind: KindState},
	{Code: "38", Name: "Ladakh", Abbreviations: []string{"LA"}, Kind: KindUnionTerritory},
}

var stateIndex = buildStateIndex()

func buildStateIndex() map[string]*State {
	index := make(map[string]*State, len(States)*4)
	for i := range States {
		st := &States[i]
		index[normalizeKey(st.Code)] = st
		index[normalizeKey(st.Name)] = st
		for _, alias := range st.Abbreviations {
			index[normalizeKey(alias)] = st
		}
	}
	return index
}

// normalizeKey folds case, collapses whitespace and treats "&" as "and".
func normalizeKey(raw string) string {
	fields := strings.Fields(strings.ToLower(raw))
	for i, f := range fields {
		if f == "&" {
			fields[i] = "and"
		}
	}
	return strings.Join(fields, " ")
}

// Lookup resolves a state by name, abbreviation or GST code.
func Lookup(raw string) (State, bool) {
	st, ok := stateIndex[normalizeKey(raw)]
	if !ok {
		return State{}, false
	}
	return *st, true
}

// Canonical returns the official name for a recognised state, or the trimmed
// input otherwise.
func Canonical(raw string) string {
	if st, ok := Lookup(raw); ok {
		return st.Name
	}
	return strings.TrimSpace(raw)
}

// SameState reports whether a and b denote the same jurisdiction. Unknown
// values fall back to a case-insensitive comparison. Blank values never match.
func SameState(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	stA, okA := Lookup(a)
	stB, okB := Lookup(b)
	if okA && okB {
		return stA.Code == stB.Code
	}
	return normalizeKey(a) == normalizeKey(b)
}
