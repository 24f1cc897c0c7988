// Package testutil provides testing utilities for recgo.
//
// This package is intended for use in tests only. It generates reproducible
// random values, RIDs and property lists:
//
//	rng := testutil.NewRNG(4711)
//	v := rng.Value(value.KindDecimal)
//	props := rng.Properties(20)
package testutil
