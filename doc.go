// Package conf provides a grouped option registry in the oslo.config mould.
//
// Options are registered under a group ("" or "DEFAULT" for the ungrouped
// namespace) and resolved through layered sources, strongest first:
//
//	override -> file value -> default override -> declared default
//
// Overrides pass through an optional middleware chain installed with
// WrapSetOverride, are coerced to the option type and checked against its
// choices, bounds and rule. Reset drops every runtime and file value while
// keeping the registered options and middleware.
//
// Trace reports which layer supplied a value, Describe and Schema expose the
// registered options to generators such as schema/openapi, and WriteSample
// renders a commented INI file that LoadFile reads back.
package conf
