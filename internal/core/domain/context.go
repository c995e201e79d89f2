package domain

import "fmt"

// PipelineContext is the append-only record of stage outputs for one run.
// A key, once written, is never overwritten or removed.
type PipelineContext struct {
	outputs map[StageID]string
	order   []StageID
}

// NewPipelineContext returns an empty context.
func NewPipelineContext() *PipelineContext {
	return &PipelineContext{outputs: make(map[StageID]string)}
}

// Put commits the output of a stage.
func (c *PipelineContext) Put(id StageID, output string) error {
	if _, ok := c.outputs[id]; ok {
		return fmt.Errorf("%w: %s", ErrContextKeyExists, id)
	}
	c.outputs[id] = output
	c.order = append(c.order, id)
	return nil
}

// Get returns the committed output of a stage.
func (c *PipelineContext) Get(id StageID) (string, bool) {
	out, ok := c.outputs[id]
	return out, ok
}

// Keys returns the committed stage ids in commit order.
func (c *PipelineContext) Keys() []StageID {
	keys := make([]StageID, len(c.order))
	copy(keys, c.order)
	return keys
}

// Len returns the number of committed outputs.
func (c *PipelineContext) Len() int {
	return len(c.order)
}

// View returns a read-only view holding only the given keys.
// Keys not yet committed are absent from the view.
func (c *PipelineContext) View(keys []StageID) ContextView {
	v := ContextView{outputs: make(map[StageID]string, len(keys))}
	for _, k := range keys {
		if out, ok := c.outputs[k]; ok {
			v.outputs[k] = out
		}
	}
	return v
}

// ContextView is the slice of a PipelineContext a stage may read.
type ContextView struct {
	outputs map[StageID]string
}

// NewContextView builds a view from explicit values. Used by callers that
// render a stage prompt outside of a run.
func NewContextView(values map[StageID]string) ContextView {
	v := ContextView{outputs: make(map[StageID]string, len(values))}
	for k, out := range values {
		v.outputs[k] = out
	}
	return v
}

// Get returns the output of a stage if it is part of the view.
func (v ContextView) Get(id StageID) (string, bool) {
	out, ok := v.outputs[id]
	return out, ok
}
