// Package config loads batch run descriptions from YAML or JSON files.
//
// Example:
//
//	expression: "a * b + sin(a)"
//	variables: [a, b]
//	gradient: true
//	points:
//	  - [2, 3]
//	  - [0.5, -1]
//	parallel:
//	  enabled: true
//	  num_workers: 4
//	  min_chunk_size: 16
package config
