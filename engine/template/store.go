package template

import (
	"context"
	"errors"
	"fmt"

	"github.com/compozy/tplsettings/engine/core"
	"github.com/compozy/tplsettings/engine/settings"
)

// Definition is the template payload persisted by a Store.
type Definition struct {
	settings.TemplateInfo
	ComponentName string             `json:"componentName"`
	Settings      []settings.Setting `json:"settings"`
	// Data holds the template variable defaults.
	Data map[string]any `json:"data"`
}

// SaveResult is the outcome of a successful save.
type SaveResult struct {
	ID         core.ID     `json:"id"`
	Definition *Definition `json:"definition"`
}

// Collection is one entry of the component collections lookup.
type Collection struct {
	Value string `json:"value"`
	Text  string `json:"text"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// Store persists component templates. A zero id creates a new template.
type Store interface {
	SaveComponentTemplate(ctx context.Context, id core.ID, def *Definition, publish bool) (*SaveResult, error)
	GetComponentsCollections(ctx context.Context) ([]Collection, error)
}

// ErrRemoteSave matches every *RemoteSaveFailure.
var ErrRemoteSave = errors.New("remote save failed")

// RemoteSaveFailure reports a network or API error from the template store.
type RemoteSaveFailure struct {
	Op      string
	Status  int
	Message string
	Cause   error
}

func (e *RemoteSaveFailure) Error() string {
	switch {
	case e.Cause != nil && e.Message != "":
		return fmt.Sprintf("%s failed: %s: %v", e.Op, e.Message, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("%s failed: %v", e.Op, e.Cause)
	case e.Status != 0:
		return fmt.Sprintf("%s failed with status %d: %s", e.Op, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
	}
}

func (e *RemoteSaveFailure) Unwrap() error {
	return e.Cause
}

func (e *RemoteSaveFailure) Is(target error) bool {
	return target == ErrRemoteSave
}

// withID returns a copy of def carrying id.
func withID(def *Definition, id core.ID) (*Definition, error) {
	copied, err := core.DeepCopy(def)
	if err != nil {
		return nil, fmt.Errorf("failed to copy template definition: %w", err)
	}
	copied.ID = id
	return copied, nil
}
