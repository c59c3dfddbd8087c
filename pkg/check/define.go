package check

import (
	"github.com/leapstack-labs/surqls/pkg/core"
	"github.com/leapstack-labs/surqls/pkg/token"
	"github.com/leapstack-labs/surqls/pkg/types"
)

// defineTable warns when a defined table is not part of the loaded schema.
func (c *checker) defineTable(span token.Span, def *core.DefineTable) {
	if def.Name == nil || def.Name.Value.Found {
		return
	}
	c.report(core.Warnf(span, MsgTableNotOnDB))
}

// defineField compares a field definition with the loaded schema: the table
// must exist, every parent segment must be an object, and the declared type
// should match the schema's.
func (c *checker) defineField(span token.Span, def *core.DefineField) {
	if def.Table == nil || len(def.Path) == 0 {
		return
	}
	if !def.Table.Value.Found {
		c.report(core.Errorf(def.Table.Span, MsgDefineNoTable))
		return
	}

	fields := def.Table.Value.Object
	parents, last := def.Path[:len(def.Path)-1], def.Path[len(def.Path)-1]
	for _, parent := range parents {
		f, ok := fields.Field(parent.Value)
		if !ok {
			c.report(core.Errorf(parent.Span, MsgParentNotFound, parent.Value))
			return
		}
		inner := f.Type.Unwrap()
		if inner.Kind != types.KindObject {
			c.report(core.Errorf(parent.Span, MsgParentNotObject, parent.Value))
			return
		}
		fields = inner.Object()
	}

	remote, ok := fields.Field(last.Value)
	if !ok {
		c.report(core.Warnf(span, MsgFieldNotOnDB))
		return
	}
	if def.Type == nil {
		return
	}
	local := def.Type.Value.Resolved
	if local.IsError() {
		return
	}
	if remote.Type.Kind == types.KindObject && local.Kind == types.KindObject {
		return
	}
	if !types.Equal(remote.Type, local) {
		c.report(core.Warnf(span, MsgFieldMismatch, remote.Type, local))
	}
}
