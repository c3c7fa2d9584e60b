package ical

import "strings"

// ─────────────────────────────────────────────────────────────────────────────
// ValueType — the fourteen RFC 5545 value data types (§4.3)
// ─────────────────────────────────────────────────────────────────────────────

// ValueType identifies one of the fourteen typed value parsers/writers.
type ValueType int

const (
	ValueDate ValueType = iota
	ValueDateTime
	ValueTime
	ValueDuration
	ValuePeriod
	ValueText
	ValueBinary
	ValueBoolean
	ValueInteger
	ValueFloat
	ValueURI
	ValueCalAddress
	ValueUTCOffset
	ValueRecur
)

// String returns the wire-form VALUE= token for this type.
func (v ValueType) String() string {
	return [...]string{
		"DATE", "DATE-TIME", "TIME", "DURATION", "PERIOD", "TEXT",
		"BINARY", "BOOLEAN", "INTEGER", "FLOAT", "URI", "CAL-ADDRESS",
		"UTC-OFFSET", "RECUR",
	}[v]
}

var valueTypeByName = map[string]ValueType{
	"DATE": ValueDate, "DATE-TIME": ValueDateTime, "TIME": ValueTime,
	"DURATION": ValueDuration, "PERIOD": ValuePeriod, "TEXT": ValueText,
	"BINARY": ValueBinary, "BOOLEAN": ValueBoolean, "INTEGER": ValueInteger,
	"FLOAT": ValueFloat, "URI": ValueURI, "CAL-ADDRESS": ValueCalAddress,
	"UTC-OFFSET": ValueUTCOffset, "RECUR": ValueRecur,
}

// parseValueType resolves an explicit VALUE= parameter token.
func parseValueType(name string) (ValueType, bool) {
	vt, ok := valueTypeByName[strings.ToUpper(strings.TrimSpace(name))]
	return vt, ok
}

// ─────────────────────────────────────────────────────────────────────────────
// Frequency / Weekday — reused directly from the teacher's RRULE enums
// ─────────────────────────────────────────────────────────────────────────────

// Frequency is the RRULE FREQ part.
type Frequency int

const (
	FreqSecondly Frequency = iota
	FreqMinutely
	FreqHourly
	FreqDaily
	FreqWeekly
	FreqMonthly
	FreqYearly
)

func (f Frequency) String() string {
	return [...]string{
		"SECONDLY", "MINUTELY", "HOURLY", "DAILY", "WEEKLY", "MONTHLY", "YEARLY",
	}[f]
}

var freqByName = map[string]Frequency{
	"SECONDLY": FreqSecondly, "MINUTELY": FreqMinutely, "HOURLY": FreqHourly,
	"DAILY": FreqDaily, "WEEKLY": FreqWeekly, "MONTHLY": FreqMonthly, "YEARLY": FreqYearly,
}

// Weekday is an RFC 5545 two-letter day-of-week token (BYDAY, WKST).
type Weekday int

const (
	WeekdaySu Weekday = iota
	WeekdayMo
	WeekdayTu
	WeekdayWe
	WeekdayTh
	WeekdayFr
	WeekdaySa
)

func (w Weekday) String() string {
	return [...]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}[w]
}

var weekdayByName = map[string]Weekday{
	"SU": WeekdaySu, "MO": WeekdayMo, "TU": WeekdayTu, "WE": WeekdayWe,
	"TH": WeekdayTh, "FR": WeekdayFr, "SA": WeekdaySa,
}

// ─────────────────────────────────────────────────────────────────────────────
// Parameter
// ─────────────────────────────────────────────────────────────────────────────

// Parameter is a single NAME=VALUE(,VALUE)* pair on a content line. Name is
// canonicalized to uppercase at parse time; Values holds the already
// RFC-6868-decoded, comma-split value list (almost always length 1).
type Parameter struct {
	Name   string
	Values []string
}

// Value returns the first (and almost always only) parameter value, or ""
// if the parameter carries none.
func (p *Parameter) Value() string {
	if len(p.Values) == 0 {
		return ""
	}
	return p.Values[0]
}

// ParameterList is the ordered, case-insensitively-keyed parameter set on a
// Property. Iteration order is insertion order (wire order).
type ParameterList struct {
	order []string
	byKey map[string]*Parameter
}

func newParameterList() *ParameterList {
	return &ParameterList{byKey: make(map[string]*Parameter)}
}

// Set adds or replaces a parameter by (already uppercased) name.
func (pl *ParameterList) Set(name string, values ...string) {
	name = strings.ToUpper(name)
	if _, exists := pl.byKey[name]; !exists {
		pl.order = append(pl.order, name)
	}
	pl.byKey[name] = &Parameter{Name: name, Values: values}
}

// Get returns the parameter by case-insensitive name.
func (pl *ParameterList) Get(name string) (*Parameter, bool) {
	if pl == nil {
		return nil, false
	}
	p, ok := pl.byKey[strings.ToUpper(name)]
	return p, ok
}

// GetValue is a convenience wrapper returning just the first value.
func (pl *ParameterList) GetValue(name string) string {
	if p, ok := pl.Get(name); ok {
		return p.Value()
	}
	return ""
}

// Has reports whether a parameter exists and its (single) value matches
// want, case-insensitively — the shape DERIVED=TRUE checks need.
func (pl *ParameterList) Has(name, want string) bool {
	v := pl.GetValue(name)
	return strings.EqualFold(v, want)
}

// Names returns parameter names in wire (insertion) order.
func (pl *ParameterList) Names() []string {
	if pl == nil {
		return nil
	}
	out := make([]string, len(pl.order))
	copy(out, pl.order)
	return out
}

// Len reports the number of distinct parameters.
func (pl *ParameterList) Len() int {
	if pl == nil {
		return 0
	}
	return len(pl.order)
}

// ─────────────────────────────────────────────────────────────────────────────
// Value — tagged variant over the fourteen data types
// ─────────────────────────────────────────────────────────────────────────────

// Value is a typed property value: a tagged variant over the fourteen RFC
// 5545 data types plus the original raw string it was parsed from. Only
// the field matching Type is meaningful; the rest are zero.
type Value struct {
	Type ValueType
	Raw  string

	Date     DateValue
	DateTime DateTimeValue
	Time     TimeValue
	Duration DurationValue
	Period   PeriodValue
	Text     string
	Binary   []byte
	Boolean  bool
	Integer  int64
	Float    float64
	URI      string
	RRule    *RRule
}

// ─────────────────────────────────────────────────────────────────────────────
// Property
// ─────────────────────────────────────────────────────────────────────────────

// Property is a named attribute on a Component: a parameter set plus a
// single typed Value. Name is held in uppercase (the lexer and NewProperty
// both canonicalize it) and is written out in that form; IsName compares
// case-insensitively.
type Property struct {
	Name   string
	Params *ParameterList
	Value  Value
}

// NewProperty builds a Property, canonicalizing Name to uppercase the way
// the assembler always does for parsed properties.
func NewProperty(name string, value Value) *Property {
	return &Property{Name: strings.ToUpper(name), Params: newParameterList(), Value: value}
}

// IsName reports whether this property's name matches, case-insensitively.
func (p *Property) IsName(name string) bool {
	return strings.EqualFold(p.Name, name)
}

// ─────────────────────────────────────────────────────────────────────────────
// Component
// ─────────────────────────────────────────────────────────────────────────────

// Component is a structural node in the VCALENDAR tree: a name tag, an
// ordered property list, and an ordered sub-component list. parent is a
// non-owning back-link set by AddComponent, which the assembler uses to
// attach every sub-component during parse; parse and write never read it.
type Component struct {
	Name       string
	Properties []*Property
	Components []*Component
	parent     *Component
}

// NewComponent builds an empty Component with the given (uppercased) name.
func NewComponent(name string) *Component {
	return &Component{Name: strings.ToUpper(name)}
}

// IsName reports whether this component's name matches, case-insensitively.
func (c *Component) IsName(name string) bool {
	return strings.EqualFold(c.Name, name)
}

// AddProperty appends a property, preserving insertion order.
func (c *Component) AddProperty(p *Property) {
	c.Properties = append(c.Properties, p)
}

// AddComponent appends a sub-component and sets its parent back-link.
func (c *Component) AddComponent(sub *Component) {
	sub.parent = c
	c.Components = append(c.Components, sub)
}

// Parent returns the weak back-link to the enclosing component, or nil for
// the root VCALENDAR (or for a component never attached to a tree).
func (c *Component) Parent() *Component { return c.parent }

// Props returns every property on this component named name, in order.
func (c *Component) Props(name string) []*Property {
	var out []*Property
	for _, p := range c.Properties {
		if p.IsName(name) {
			out = append(out, p)
		}
	}
	return out
}

// Prop returns the first property named name, or nil.
func (c *Component) Prop(name string) *Property {
	for _, p := range c.Properties {
		if p.IsName(name) {
			return p
		}
	}
	return nil
}

// Sub returns every direct sub-component named name, in order.
func (c *Component) Sub(name string) []*Component {
	var out []*Component
	for _, s := range c.Components {
		if s.IsName(name) {
			out = append(out, s)
		}
	}
	return out
}

// VCalendar is the rooted tree produced by a parse: an alias of Component
// for the VCALENDAR node, per spec.md §9 ("component kind is just the
// name tag", no subclassing).
type VCalendar = Component
