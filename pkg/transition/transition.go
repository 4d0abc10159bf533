// Package transition classifies the mutations of one layout tick into the
// animation category a panel should play.
package transition

// Category is the kind of transition.
type Category int

const (
	None Category = iota
	Entrance
	ContentReset
	SingleAdd
	MultipleAdd
	SingleDelete
	MultipleDelete
	SingleReorder
	MultipleReorder
	Mixed
)

var categoryNames = [...]string{
	None:            "none",
	Entrance:        "entrance",
	ContentReset:    "content-reset",
	SingleAdd:       "single-add",
	MultipleAdd:     "multiple-add",
	SingleDelete:    "single-delete",
	MultipleDelete:  "multiple-delete",
	SingleReorder:   "single-reorder",
	MultipleReorder: "multiple-reorder",
	Mixed:           "mixed",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// Variant distinguishes stacking panels from wrapping ones.
type Variant int

const (
	List Variant = iota
	Grid
)

func (v Variant) String() string {
	if v == Grid {
		return "grid"
	}
	return "list"
}

// Context is the classified transition.
type Context struct {
	Category Category
	Variant  Variant
}

func (c Context) String() string {
	return c.Category.String() + "/" + c.Variant.String()
}

// Counters are the mutations recorded during one tick.
type Counters struct {
	Added     int
	Removed   int
	Reordered int
	Reset     bool
}

// IsZero reports whether nothing was recorded.
func (c Counters) IsZero() bool { return c == Counters{} }

// Classify maps counters to a transition. Precedence: entrance, reset,
// reorder, mixed add and remove, add, delete, none. Wrapping panels get
// the Grid variant.
func Classify(c Counters, entrance bool, wrapping bool) Context {
	ctx := Context{Variant: List}
	if wrapping {
		ctx.Variant = Grid
	}
	switch {
	case entrance:
		ctx.Category = Entrance
	case c.Reset:
		ctx.Category = ContentReset
	case c.Reordered == 1:
		ctx.Category = SingleReorder
	case c.Reordered > 1:
		ctx.Category = MultipleReorder
	case c.Added > 0 && c.Removed > 0:
		ctx.Category = Mixed
	case c.Added == 1:
		ctx.Category = SingleAdd
	case c.Added > 1:
		ctx.Category = MultipleAdd
	case c.Removed == 1:
		ctx.Category = SingleDelete
	case c.Removed > 1:
		ctx.Category = MultipleDelete
	default:
		ctx.Category = None
	}
	return ctx
}
