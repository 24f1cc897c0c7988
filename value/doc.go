// Package value defines the closed set of property value kinds and the typed
// Value used by the record codec.
//
// # Kinds
//
// Every encoded property is preceded by its Kind byte:
//
//   - Null, String, Byte, Boolean, Short, Int, Long
//   - Float, Double, Date, DateTime, Decimal, RID
//   - Binary and List (compound kinds)
//
// The kind alone determines how many bytes follow and how to reinterpret them;
// numeric widening is never implicit.
//
// Example:
//
//	props := value.Properties{}
//	props.Set("name", value.String("ada"))
//	props.Set("born", value.Date(time.Date(1815, 12, 10, 0, 0, 0, 0, time.UTC)))
//	props.Set("friend", value.Ref(model.NewRID(3, 7)))
//
// Values are immutable after construction; constructors copy slices and big
// integers they are given.
package value
