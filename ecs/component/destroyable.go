package component

// Destroyable is a soft-delete marker. Owners drop destroyed values during
// their next housekeeping pass.
type Destroyable struct {
	destroyed bool
}

// Destroy marks the value for removal.
func (d *Destroyable) Destroy() {
	d.destroyed = true
}

// Destroyed reports whether Destroy was called.
func (d *Destroyable) Destroyed() bool {
	return d.destroyed
}
