package diag

import (
	"cmp"
	"slices"

	"fortio.org/safecast"

	"moveflow/internal/source"
)

// Bag collects diagnostics up to a limit. A Bag belongs to one goroutine;
// the driver gives each file its own and merges them at the end.
type Bag struct {
	items []*Diagnostic
	max   uint16
}

// NewBag creates a bag that accepts at most max diagnostics. Limits that do
// not fit in uint16 are clamped.
func NewBag(max int) *Bag {
	limit, err := safecast.Conv[uint16](max)
	if err != nil {
		limit = ^uint16(0)
	}
	return &Bag{items: make([]*Diagnostic, 0, min(int(limit), 64)), max: limit}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d *Diagnostic) bool {
	if d == nil || len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Force adds d past the limit, raising it by one if needed. Used for
// bookkeeping entries such as timings that must not be crowded out.
func (b *Bag) Force(d *Diagnostic) {
	if d == nil {
		return
	}
	if !b.Add(d) {
		b.grow(len(b.items) + 1)
		b.items = append(b.items, d)
	}
}

func (b *Bag) grow(total int) {
	if total <= int(b.max) {
		return
	}
	limit, err := safecast.Conv[uint16](total)
	if err != nil {
		limit = ^uint16(0)
	}
	b.max = limit
}

func (b *Bag) hasAtLeast(sev Severity) bool {
	return slices.ContainsFunc(b.items, func(d *Diagnostic) bool { return d.Severity >= sev })
}

func (b *Bag) HasErrors() bool   { return b.hasAtLeast(SevError) }
func (b *Bag) HasWarnings() bool { return b.hasAtLeast(SevWarning) }

func (b *Bag) Len() int { return len(b.items) }

// Items возвращает внутренний срез; не модифицируйте его.
func (b *Bag) Items() []*Diagnostic {
	return b.items
}

// Merge appends everything from other, raising the limit to fit.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.grow(len(b.items) + len(other.items))
	room := int(b.max) - len(b.items)
	b.items = append(b.items, other.items[:min(room, len(other.items))]...)
}

// EscalateWarnings turns every warning into an error.
func (b *Bag) EscalateWarnings() {
	for _, d := range b.items {
		if d.Severity == SevWarning {
			d.Severity = SevError
		}
	}
}

// Sort orders by file, start, end, then severity (errors first), then code.
// The sort is stable, so reports at one spot keep their emission order.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y *Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Primary.File, y.Primary.File),
			cmp.Compare(x.Primary.Start, y.Primary.Start),
			cmp.Compare(x.Primary.End, y.Primary.End),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}

// Dedup drops repeats of an earlier diagnostic with the same code, severity,
// primary span and message.
func (b *Bag) Dedup() {
	type key struct {
		code Code
		sev  Severity
		span source.Span
		msg  string
	}
	seen := make(map[key]struct{}, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d *Diagnostic) bool {
		k := key{d.Code, d.Severity, d.Primary, d.Message}
		if _, dup := seen[k]; dup {
			return true
		}
		seen[k] = struct{}{}
		return false
	})
}
