// Package vocabulary provides the controlled-vocabulary tables used when
// mapping Blue-Cloud catalogue entries onto the EOSC resource profile.
//
// A Vocabulary maps a case-insensitive display name to a stable EOSC
// identifier. A Hierarchy pairs two vocabularies (domain/subdomain,
// category/subcategory) with a child-to-parent id mapping. A Set bundles
// every axis the mapping engine needs and is built once at startup, either
// from the embedded snapshot or from YAML files in a data directory, and is
// read-only afterwards.
package vocabulary
