// Package pval defines the handful of untyped compound value shapes the
// Parser and Printer ASTs pass between combinators (pairs from Zip,
// optional values from Optional, tagged either values from OrElseEither).
// Both engines and the syntax façade share these so a Zip node's parser
// half and printer half agree on the shape flowing between them.
package pval

// Pair is the value produced by parser.Zip / consumed by printer.Zip.
type Pair struct {
	First, Second any
}

// Option is the value produced by parser.Optional / consumed by
// printer.Optional: Present reports whether Value holds a matched value.
type Option struct {
	Value   any
	Present bool
}

// Either tags which side of an OrElseEither produced Value: Left=true
// means the value came from the left alternative.
type Either struct {
	Left  bool
	Value any
}
