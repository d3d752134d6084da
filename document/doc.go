// Package document renders tree nodes produced by the minimeta tree codec as
// text or binary documents, and parses them back into nodes.
//
// YAML is the native form. JSON keeps mapping key order. CBOR uses core
// deterministic encoding, so mapping keys come back sorted; the tree codec
// reads by key name, so order is irrelevant to decoding.
package document
