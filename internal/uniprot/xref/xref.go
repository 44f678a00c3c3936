// Package xref converts UniProt database cross-references into flat
// (accession, database, description) records and filters them by database.
package xref

import "strings"

// Property is a key/value attribute attached to a raw cross-reference,
// e.g. ProteinId=ENSP00000256078 on an Ensembl reference.
type Property struct {
	Key   string
	Value string
}

// Raw is a database cross-reference as delivered by the entry service.
type Raw struct {
	Database   string
	ID         string
	IsoformID  string
	Properties []Property
}

// Property returns the value of the named property, or "" if absent.
func (r Raw) Property(key string) string {
	for _, p := range r.Properties {
		if strings.EqualFold(p.Key, key) {
			return p.Value
		}
	}
	return ""
}

// Converted is a flattened cross-reference ready to be attached to a protein.
type Converted struct {
	AC          string
	Database    string
	Description string
}
