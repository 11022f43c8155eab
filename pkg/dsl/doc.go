/*
Package dsl provides a fluent builder for state machine graphs.

It is an alternative to writing a GraphConfig literal or loading a document,
handy for tests and for graphs generated at runtime.

Example usage:

	m, err := dsl.New().
		Add("start").Go("researching").
		Add("researching").Go("writing").
		Add("writing").Go("reviewing").
		Add("reviewing").Go("writing", "end").
		Add("end").Terminal().
		Build()

Targets must be declared with Add as well; Build rejects open graphs.
*/
package dsl
