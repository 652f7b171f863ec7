package editor

import (
	"scene-editor/scene"
	"scene-editor/textures"
)

// Command represents an undoable editor action
type Command interface {
	Execute()
	Undo()
	Description() string
}

// History manages undo/redo stacks
type History struct {
	undoStack []Command
	redoStack []Command
	maxDepth  int
}

// NewHistory creates a new history with the given max undo depth
func NewHistory(maxDepth int) *History {
	return &History{
		undoStack: make([]Command, 0, maxDepth),
		redoStack: make([]Command, 0, maxDepth),
		maxDepth:  maxDepth,
	}
}

// Do executes a command and pushes it to the undo stack
func (h *History) Do(cmd Command) {
	cmd.Execute()
	h.undoStack = append(h.undoStack, cmd)
	if len(h.undoStack) > h.maxDepth {
		h.undoStack = h.undoStack[1:]
	}
	h.redoStack = h.redoStack[:0]
}

// Undo reverts the last action and returns it, or nil.
func (h *History) Undo() Command {
	if len(h.undoStack) == 0 {
		return nil
	}
	cmd := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	cmd.Undo()
	h.redoStack = append(h.redoStack, cmd)
	return cmd
}

// Redo reapplies the last undone action and returns it, or nil.
func (h *History) Redo() Command {
	if len(h.redoStack) == 0 {
		return nil
	}
	cmd := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	cmd.Execute()
	h.undoStack = append(h.undoStack, cmd)
	return cmd
}

func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

func (h *History) Clear() {
	h.undoStack = h.undoStack[:0]
	h.redoStack = h.redoStack[:0]
}

// --- Concrete Commands ---

// AddShapeCommand inserts a shape under Name and selects it.
type AddShapeCommand struct {
	Store *scene.Store
	Name  string
	Shape *scene.Shape

	prevSelected string
}

func (c *AddShapeCommand) Execute() {
	c.prevSelected = c.Store.Selected()
	c.Store.AddShape(c.Name, c.Shape)
	_ = c.Store.Select(c.Name)
}

func (c *AddShapeCommand) Undo() {
	c.Store.RemoveShape(c.Name)
	_ = c.Store.Select(c.prevSelected)
}

func (c *AddShapeCommand) Description() string { return "Add " + c.Name }

// RemoveShapeCommand deletes a shape and keeps it for undo.
type RemoveShapeCommand struct {
	Store *scene.Store
	Name  string
	shape *scene.Shape
}

func NewRemoveShapeCommand(store *scene.Store, name string) (*RemoveShapeCommand, bool) {
	sh, ok := store.Shape(name)
	if !ok {
		return nil, false
	}
	return &RemoveShapeCommand{Store: store, Name: name, shape: sh}, true
}

func (c *RemoveShapeCommand) Execute() { c.Store.RemoveShape(c.Name) }
func (c *RemoveShapeCommand) Undo() {
	c.Store.AddShape(c.Name, c.shape)
	if c.shape.Selected {
		_ = c.Store.Select(c.Name)
	}
}
func (c *RemoveShapeCommand) Description() string { return "Remove " + c.Name }

// ShadingCommand switches a shape's shading kind.
type ShadingCommand struct {
	Name     string
	Shape    *scene.Shape
	Old, New scene.ShadingKind
}

func (c *ShadingCommand) Execute()            { c.Shape.Shading = c.New }
func (c *ShadingCommand) Undo()               { c.Shape.Shading = c.Old }
func (c *ShadingCommand) Description() string { return c.Name + ": " + c.New.String() }

// GeometryCommand switches a shape's geometry.
type GeometryCommand struct {
	Name     string
	Shape    *scene.Shape
	Old, New scene.GeometryKind
}

func (c *GeometryCommand) Execute()            { c.Shape.Geometry = c.New }
func (c *GeometryCommand) Undo()               { c.Shape.Geometry = c.Old }
func (c *GeometryCommand) Description() string { return c.Name + ": " + c.New.String() }

// PackCommand changes the texture pack bound to a PBR material.
type PackCommand struct {
	Name                   string
	Shape                  *scene.Shape
	OldPack, NewPack       textures.PackID
	OldEnabled, NewEnabled bool
}

func (c *PackCommand) Execute() {
	c.Shape.PBR.Pack, c.Shape.PBR.PackEnabled = c.NewPack, c.NewEnabled
}

func (c *PackCommand) Undo() {
	c.Shape.PBR.Pack, c.Shape.PBR.PackEnabled = c.OldPack, c.OldEnabled
}

func (c *PackCommand) Description() string { return c.Name + ": texture pack" }

// TextureCommand changes the diffuse texture of a Phong shape.
type TextureCommand struct {
	Name     string
	Shape    *scene.Shape
	Old, New textures.TextureID
}

func (c *TextureCommand) Execute()            { c.Shape.Texture = c.New }
func (c *TextureCommand) Undo()               { c.Shape.Texture = c.Old }
func (c *TextureCommand) Description() string { return c.Name + ": texture" }
