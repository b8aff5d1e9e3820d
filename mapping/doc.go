// Package mapping transforms a Blue-Cloud catalogue record into an EOSC
// resource profile.
//
// The Blue-Cloud side encodes almost everything as free-text key/value
// "extras" plus a flat tag list; the EOSC side wants a strictly typed,
// nested profile governed by controlled vocabularies. The Mapper bridges the
// two: it dispatches each extras entry through a declarative handler table,
// applies the agreed data corrections, resolves controlled-vocabulary ids,
// re-composes the composite domain/category pairs the source lists loosely,
// splits contact names, filters redundant tags and checks every mandatory
// field.
//
// Data-quality problems never abort a mapping; they accumulate as
// human-readable diagnostics on the Result. Only two things return an error
// from Map: known placeholder dummy values (which must never reach
// production) and a scalar vocabulary lookup miss.
package mapping
