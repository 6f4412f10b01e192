package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryRecorder(t *testing.T) {
	r := NewMemoryRecorder()
	r.Record([]Operation{
		NewTransform("Group amt", "Aggregate function applied: 'Sum'.", []string{"amt"}, "total"),
		NewTransform("dedup", "Removed duplicate records based on unique fields.", []string{"id"}, "id"),
	})
	ops := r.Operations()
	assert.Len(t, ops, 2)
	assert.Equal(t, "Group amt(amt -> total)", ops[0].String())
	assert.Len(t, r.Outputs()["total"], 1)
}

func TestRecorderFunc(t *testing.T) {
	var got []Operation
	var rec Recorder = RecorderFunc(func(ops []Operation) { got = ops })
	rec.Record([]Operation{NewTransform("x", "", nil, "y")})
	assert.Len(t, got, 1)
}

func TestNewTransform_CopiesInputs(t *testing.T) {
	in := []string{"a"}
	op := NewTransform("x", "", in, "b")
	in[0] = "changed"
	assert.Equal(t, []string{"a"}, op.Inputs)
}
