// Package ical implements an RFC 5545 iCalendar parser, writer, and
// recurrence rule model.
//
// The pipeline runs, leaf first:
//
//	LineFolder/Lexer -> ParameterParser -> ValueParserRegistry ->
//	RRuleParser -> ComponentAssembler -> *Component (VCALENDAR tree)
//
// and the Writer mirrors it back: typed value writers -> property
// serializer -> component serializer -> line folder.
//
// A Parser instance is not safe for concurrent use: warnings and errors
// accumulate on the instance and are reset at the start of every Parse
// call. Components, properties, and values are immutable once returned.
package ical
