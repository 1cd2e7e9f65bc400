// Package artifact defines the persisted document types and their
// validation rules.
//
// Every artifact is a YAML document carrying exactly one metadata block.
// Serialization is stable: struct field order fixes the key order on every
// write, and timestamps use the canonical UTC form from timeutil so that
// deserialize(serialize(x)) == x for all fields.
package artifact
