// Package policy evaluates declarative compliance rules against a PII
// registry.
//
// Rules are loaded from a YAML (or JSON) document:
//
//	policies:
//	  - id: no_ssn_in_logs
//	    forbidden_tags: [national_id]
//	    table_name_prefix: logs
//	  - id: users_tagged
//	    applies_to_tables: [users]
//	    require_tag_for_detected: true
//
// Every rule must carry a unique id; a document with an invalid rule is
// rejected as a whole before any evaluation takes place.
//
// The Evaluator walks rules in declaration order and registry rows in
// registry order. Output ordering is part of the contract: re-running with the
// same inputs yields the same violations in the same order, even though rules
// are evaluated concurrently.
//
// Store and FileWatcher keep a rule set current while a long-running process
// (the scheduler) is alive: edits to the policy file are validated and swapped
// in atomically, and an invalid edit leaves the previous rules active.
package policy
