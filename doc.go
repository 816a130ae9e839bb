// Package tfsql loads a Text-Fabric corpus into a relational database.
//
// A corpus is a directory of .tf feature files. The object type file (otype.tf)
// assigns every node to a type. Each type becomes a table keyed by node,
// each node feature becomes a column of the tables of the types its nodes belong to,
// and each edge feature becomes a table of (from_node, to_node, value) rows.
//
// A Loader runs in three phases: it reads the type registry, discovers the
// feature files and creates every table, then loads the data in a single
// transaction. See the tf package for the file format and the sink package
// for the supported databases.
package tfsql
