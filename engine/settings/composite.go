package settings

import "github.com/compozy/tplsettings/engine/core"

// CompositeSynchronizer normalizes entries before and after editing.
// Scalar entries pass through; composite entries are flattened into their
// children and re-hydrated from them.
type CompositeSynchronizer interface {
	Sync(entry Entry) Entry
}

// SyncFunc adapts a function to CompositeSynchronizer.
type SyncFunc func(Entry) Entry

func (f SyncFunc) Sync(entry Entry) Entry {
	return f(entry)
}

// PassThrough leaves every entry untouched.
var PassThrough CompositeSynchronizer = SyncFunc(func(e Entry) Entry { return e })

// GroupSync hydrates composite children from the parent map value and
// rebuilds the parent value from the children.
type GroupSync struct{}

func (GroupSync) Sync(entry Entry) Entry {
	if entry.Type != KindComposite || len(entry.Children) == 0 {
		return entry
	}
	nested, _ := core.AsMap(entry.Value)
	value := make(map[string]any, len(entry.Children))
	children := make([]Entry, len(entry.Children))
	for i, child := range entry.Children {
		if v, ok := nested[child.Name]; ok {
			child.Value = v
		}
		children[i] = child
		value[child.Name] = child.Value
	}
	entry.Children = children
	entry.Value = value
	return entry
}

// syncEntry runs sync over every nested child, then the entry itself.
func syncEntry(sync CompositeSynchronizer, entry Entry) Entry {
	if len(entry.Children) > 0 {
		children := make([]Entry, len(entry.Children))
		for i, child := range entry.Children {
			children[i] = syncEntry(sync, child)
		}
		entry.Children = children
	}
	return sync.Sync(entry)
}
