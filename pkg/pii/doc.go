// Package pii classifies tabular columns into personally identifiable
// information categories.
//
// Classification is driven by an ordered Catalog of tags. Each catalog entry
// carries a column-name pattern and, optionally, a value pattern. Detection is
// first-match-wins over catalog order, so the Catalog is an explicit ordered
// list rather than a map.
//
// # Classifying a Column
//
//	classifier := pii.NewClassifier(pii.DefaultCatalog())
//	result, ok := classifier.Classify("users", "user_email", values)
//	if ok {
//		fmt.Println(result.Tags, result.ReasonString())
//	}
//
// A column is classified in three steps:
//
//  1. Name detection: the lower-cased column name is tested against each
//     entry's name pattern; the first match contributes a tag.
//  2. Value detection: up to 50 non-null values are tested against each
//     entry's value pattern; the first entry with at least 3 full matches
//     contributes a tag.
//  3. Fallback: when nothing matched and the column is textual, a column whose
//     first 20 values contain at least 5 with whitespace is tagged "name".
//
// # Scanning a Dataset
//
// Scanner applies the classifier to every column of every table and builds a
// Registry holding only the columns that received at least one tag. Tables
// are classified concurrently and merged back in input order, so the Registry
// is deterministic.
package pii
