// Package schema enforces the fixed shape of a person payload before it
// reaches storage. The rules are the ones the API has always had: seven known
// fields, three of them required, no additional members.
package schema

import (
	"bytes"
	"encoding/json"
	"net/mail"
	"sort"
)

// FieldError describes one violated constraint of the person schema.
type FieldError struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
	Message    string `json:"message"`
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindInteger
)

type property struct {
	name   string
	kind   fieldKind
	format string
}

// Declaration order matters: violations are reported in this order.
var personProperties = []property{
	{name: "vorname", kind: kindString},
	{name: "nachname", kind: kindString},
	{name: "plz", kind: kindInteger},
	{name: "strasse", kind: kindString},
	{name: "ort", kind: kindString},
	{name: "telefonnummer", kind: kindInteger},
	{name: "email", kind: kindString, format: "email"},
}

var personRequired = []string{"vorname", "nachname", "email"}

// ValidatePerson checks a raw JSON payload against the person schema and
// returns one entry per violated constraint; a nil result means the payload
// is valid. Type and format violations come first in property-declaration
// order, then missing required fields, then unrecognized members. Presence is
// the only criterion for optional fields, so a plz or telefonnummer of 0 is
// accepted.
func ValidatePerson(raw []byte) []FieldError {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var candidate map[string]any
	if err := dec.Decode(&candidate); err != nil || candidate == nil {
		return []FieldError{{Constraint: "type", Message: "Payload muss ein JSON-Objekt sein"}}
	}

	var errs []FieldError

	for _, p := range personProperties {
		value, ok := candidate[p.name]
		if !ok {
			continue
		}
		switch p.kind {
		case kindString:
			s, isString := value.(string)
			if !isString {
				errs = append(errs, FieldError{p.name, "type", "muss ein String sein"})
				continue
			}
			if p.format == "email" && !validEmail(s) {
				errs = append(errs, FieldError{p.name, "format", "muss eine gültige E-Mail-Adresse sein"})
			}
		case kindInteger:
			if !isInteger(value) {
				errs = append(errs, FieldError{p.name, "type", "muss eine Ganzzahl sein"})
			}
		}
	}

	for _, name := range personRequired {
		if _, ok := candidate[name]; !ok {
			errs = append(errs, FieldError{name, "required", "Pflichtfeld fehlt"})
		}
	}

	for _, name := range unknownFields(candidate) {
		errs = append(errs, FieldError{name, "additionalProperties", "unbekanntes Feld"})
	}

	return errs
}

// isInteger accepts whole JSON numbers only; 5 and 5.0 pass, 5.3 does not.
func isInteger(value any) bool {
	num, ok := value.(json.Number)
	if !ok {
		return false
	}
	if _, err := num.Int64(); err == nil {
		return true
	}
	f, err := num.Float64()
	return err == nil && f == float64(int64(f))
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// unknownFields lists members outside the schema, sorted for deterministic
// error output.
func unknownFields(candidate map[string]any) []string {
	known := make(map[string]bool, len(personProperties))
	for _, p := range personProperties {
		known[p.name] = true
	}

	var unknown []string
	for name := range candidate {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}
