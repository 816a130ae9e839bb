// Package tf decodes Text-Fabric feature files.
//
// A feature file is a header of lines beginning with '@',
// followed by a body of tab-separated records.
// Node numbers in a body are range-compressed:
// "1-3,7" stands for the nodes 1, 2, 3 and 7,
// and a record that omits its node number
// applies to the node after the one on the previous record.
//
// The object type file (otype.tf) assigns every node to exactly one object type.
// Its body is decoded into a Registry,
// which Partition uses to split a file's node records
// into runs that belong in the same table.
package tf
