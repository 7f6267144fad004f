package objmodel

// Link is a null-or-Object slot that participates in the link-count
// protocol on assignment (§3 "Link"). The zero value is a null Link.
type Link struct {
	target *Object
}

// Get returns the Link's current target, or nil if null.
func (l *Link) Get() *Object {
	return l.target
}

// Set assigns obj to the Link, running the link-count protocol:
// the previous non-nil target is decremented, the new non-nil target is
// incremented. A null-to-null transition is a no-op. Assigning the same
// object the Link already holds nets to "incremented exactly once"
// across the Link's lifetime, since the very first assignment is the
// only one that sees a nil previous target.
func (l *Link) Set(obj *Object) {
	prev := l.target
	if prev == obj {
		return
	}
	if prev != nil {
		prev.LinkCount--
	}
	if obj != nil {
		obj.LinkCount++
	}
	l.target = obj
}

// Clear drops the Link's reference, decrementing its target if any.
func (l *Link) Clear() {
	l.Set(nil)
}
