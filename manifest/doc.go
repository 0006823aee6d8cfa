// Package manifest reads, validates and writes the pyproject-style build
// manifest the package ships with. Parsing and serialization round-trip:
// decoding a manifest and encoding it again yields a semantically
// equivalent table, even where formatting or key order differ.
//
// Dependency entries are checked as requirement specifiers (a PEP 508
// subset: name, extras, version clauses, opaque environment marker).
package manifest
