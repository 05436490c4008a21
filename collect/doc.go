// Package collect extracts the static lookup structures of a form tree:
// cross-field validator and logic entries, value derivations and property
// derivations. Collectors only read the tree; they never evaluate anything,
// and their results are immutable once returned.
//
// Traversal differs per collector. CrossField keeps array items opaque;
// Derivations and PropertyDerivations enter them, rewriting "$.name" targets
// to "<arrayKey>.$.name". Derivation source keys inside arrays stay bare,
// property derivation field keys carry the "<arrayKey>.$." prefix.
package collect
