package editor

// nextName returns the name after current, wrapping around. An unknown or
// empty current starts at the first name.
func nextName(names []string, current string) string {
	if len(names) == 0 {
		return ""
	}
	for i, n := range names {
		if n == current {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

// SelectNext moves the selection to the next shape by name.
func (e *Editor) SelectNext() string {
	name := nextName(e.Store.Names(), e.Store.Selected())
	if name == "" {
		return ""
	}
	_ = e.Store.Select(name)
	e.status("Selected: " + name)
	return name
}

// ClearSelection deselects every shape.
func (e *Editor) ClearSelection() {
	_ = e.Store.Select("")
}
