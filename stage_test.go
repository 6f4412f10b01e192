package groupreduce

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rulego/groupreduce/aggregator"
	"github.com/rulego/groupreduce/config"
	"github.com/rulego/groupreduce/lineage"
	"github.com/rulego/groupreduce/logger"
	"github.com/rulego/groupreduce/relational/sqlengine"
	"github.com/rulego/groupreduce/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var salesSchema = schema.RecordOf("sales",
	schema.NewField("id", schema.Of(schema.Long)),
	schema.NewField("dept", schema.Of(schema.String)),
	schema.NewField("amt", schema.NullableOf(schema.Of(schema.Long))),
)

var salesTable = sqlengine.NewTable("sales", "id", "dept", "amt")

func sale(id int64, dept string, amt interface{}) *schema.Record {
	return schema.NewBuilder(salesSchema).Set("id", id).Set("dept", dept).Set("amt", amt).MustBuild()
}

func sales() []*schema.Record {
	return []*schema.Record{
		sale(1, "A", int64(10)),
		sale(2, "B", int64(5)),
		sale(3, "A", int64(20)),
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestGroupByStage_Pushdown(t *testing.T) {
	stage := NewGroupByStage(&config.GroupByConfig{
		GroupByFields: "dept",
		Aggregates:    "total:sum(amt),n:count(*)",
	}, WithDiscardLog())
	out, err := stage.Configure(salesSchema)
	require.NoError(t, err)
	assert.Equal(t, []string{"dept", "total", "n"}, out.FieldNames())
	assert.Same(t, out, stage.OutputSchema())

	exec, err := stage.Plan(sqlengine.New(sqlengine.ANSI, sqlengine.WithQualifiedColumnNames()), salesTable)
	require.NoError(t, err)
	require.True(t, exec.Pushdown())
	assert.Equal(t, "pushdown", exec.Mode().String())
	assert.Nil(t, exec.Reducer())
	sql, err := exec.Render("sales", nil)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "dept" AS "dept", SUM("amt") AS "total", COUNT(*) AS "n" FROM "sales" GROUP BY "dept"`, sql)

	// the decision is cached
	again, err := stage.Plan(nil, nil)
	require.NoError(t, err)
	assert.Same(t, exec, again)

	_, err = stage.Run(context.Background(), sales())
	assert.ErrorIs(t, err, ErrPushedDown)
}

func TestGroupByStage_RowWiseFallback(t *testing.T) {
	stage := NewGroupByStage(&config.GroupByConfig{
		GroupByFields: "dept",
		Aggregates:    "total:sum(amt),big:sumIf(amt):condition(amt != nil && amt > 10)",
		NumPartitions: intPtr(3),
	}, WithDiscardLog())
	_, err := stage.Configure(salesSchema)
	require.NoError(t, err)

	exec, err := stage.Plan(sqlengine.New(sqlengine.ANSI), salesTable)
	require.NoError(t, err)
	assert.False(t, exec.Pushdown())
	assert.Equal(t, "Unsupported aggregation definition", exec.Reason())
	assert.NotNil(t, exec.Reducer())
	assert.Nil(t, exec.GroupByPlan())
	_, err = exec.Render("sales", nil)
	assert.Error(t, err)

	out, err := stage.Run(context.Background(), sales())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].Get("dept"))
	assert.Equal(t, int64(30), out[0].Get("total"))
	assert.Equal(t, int64(20), out[0].Get("big"))
	assert.Equal(t, int64(5), out[1].Get("total"))
	assert.Nil(t, out[1].Get("big"))
}

func TestGroupByStage_BigQueryOnly(t *testing.T) {
	cfg := &config.GroupByConfig{GroupByFields: "dept", Aggregates: "ids:collectList(id)"}

	ansi := NewGroupByStage(cfg, WithDiscardLog())
	_, err := ansi.Configure(salesSchema)
	require.NoError(t, err)
	exec, err := ansi.Plan(sqlengine.New(sqlengine.ANSI), salesTable)
	require.NoError(t, err)
	assert.Equal(t, "Cannot find an Expression Factory", exec.Reason())

	bq := NewGroupByStage(cfg, WithDiscardLog())
	_, err = bq.Configure(salesSchema)
	require.NoError(t, err)
	exec, err = bq.Plan(sqlengine.New(sqlengine.BigQuery), salesTable)
	require.NoError(t, err)
	require.True(t, exec.Pushdown())
	assert.Equal(t, "ARRAY_AGG(id IGNORE NULLS)", exec.GroupByPlan().Select["ids"].Extract())
}

func TestGroupByStage_ConfigureFailures(t *testing.T) {
	stage := NewGroupByStage(&config.GroupByConfig{
		GroupByFields: "",
		Aggregates:    "total:sum(amt),oops",
		NumPartitions: intPtr(-1),
	}, WithDiscardLog())
	_, err := stage.Configure(salesSchema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 configuration failures")

	stage = NewGroupByStage(&config.GroupByConfig{
		GroupByFields: "region",
		Aggregates:    "total:sum(dept),c:countIf(*):condition(ghost.x == 1)",
	}, WithDiscardLog())
	_, err = stage.Configure(salesSchema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot group by field 'region'")
	assert.Contains(t, err.Error(), "Sum is not supported for the field dept")
	assert.Contains(t, err.Error(), "Field ghost.x not found in output schema.")
}

func TestGroupByStage_DeferredSchema(t *testing.T) {
	stage := NewGroupByStage(&config.GroupByConfig{
		GroupByFields: "region",
		Aggregates:    "n:count(*)",
	}, WithDiscardLog())
	out, err := stage.Configure(nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	exec, err := stage.Plan(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "no relational engine", exec.Reason())

	_, err = stage.Run(context.Background(), sales())
	var cfgErr *aggregator.ConfigError
	require.True(t, errors.As(err, &cfgErr))
}

func TestDedupStage(t *testing.T) {
	records := []*schema.Record{
		sale(1, "x", int64(5)),
		sale(2, "x", int64(9)),
		sale(3, "y", int64(1)),
	}

	maxStage := NewDedupStage(&config.DedupConfig{UniqueFields: "dept", FilterOperation: "amt:max"}, WithDiscardLog())
	out, err := maxStage.Configure(salesSchema)
	require.NoError(t, err)
	assert.Equal(t, "sales.dedup", out.Name())
	exec, err := maxStage.Plan(sqlengine.New(sqlengine.ANSI), salesTable)
	require.NoError(t, err)
	require.True(t, exec.Pushdown())
	sql, err := exec.Render("sales", nil)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "id", "dept", "amt" FROM (SELECT *, ROW_NUMBER() OVER (PARTITION BY dept ORDER BY amt DESC NULLS LAST) AS "rn" FROM "sales") AS "dedup" WHERE "rn" = 1`, sql)

	lastStage := NewDedupStage(&config.DedupConfig{UniqueFields: "dept", FilterOperation: "amt:last"}, WithDiscardLog())
	_, err = lastStage.Configure(salesSchema)
	require.NoError(t, err)
	exec, err = lastStage.Plan(sqlengine.New(sqlengine.ANSI), salesTable)
	require.NoError(t, err)
	assert.False(t, exec.Pushdown())
	assert.Equal(t, "Filter Operation is not supported. Only ANY, MIN and MAX are supported.", exec.Reason())

	rows, err := lastStage.Run(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(3), rows[1].Get("id"))

	bad := NewDedupStage(&config.DedupConfig{UniqueFields: "dept", FilterOperation: "dept:max"}, WithDiscardLog())
	_, err = bad.Configure(salesSchema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unsupported filter operation MAX(dept)")
}

func TestStage_Lineage(t *testing.T) {
	recorder := lineage.NewMemoryRecorder()
	stage := NewGroupByStage(&config.GroupByConfig{GroupByFields: "dept", Aggregates: "total:sum(amt)"},
		WithDiscardLog(), WithLineage(recorder))
	_, err := stage.Configure(salesSchema)
	require.NoError(t, err)
	ops := recorder.Outputs()["total"]
	require.Len(t, ops, 1)
	assert.Equal(t, "Group total(amt -> total)", ops[0].String())
}

func TestStage_LogOutput(t *testing.T) {
	buf := &syncBuffer{}
	stage := NewGroupByStage(&config.GroupByConfig{GroupByFields: "dept", Aggregates: "n:count(*)"},
		WithLogOutput(buf, logger.INFO))
	_, err := stage.Configure(salesSchema)
	require.NoError(t, err)
	_, err = stage.Plan(nil, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "[INFO] groupby running row wise: no relational engine")

	quiet := &syncBuffer{}
	stage = NewGroupByStage(&config.GroupByConfig{GroupByFields: "dept", Aggregates: "n:count(*)"},
		WithLogger(logger.NewLogger(logger.DEBUG, quiet)), WithLogLevel(logger.ERROR))
	_, err = stage.Plan(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, quiet.String())
}

func intPtr(n int) *int {
	return &n
}

func TestStage_Stats(t *testing.T) {
	stage := NewGroupByStage(&config.GroupByConfig{GroupByFields: "dept", Aggregates: "n:count(*)"}, WithDiscardLog())
	_, err := stage.Configure(salesSchema)
	require.NoError(t, err)
	_, err = stage.Run(context.Background(), sales())
	require.NoError(t, err)
	_, err = stage.Run(context.Background(), sales())
	require.NoError(t, err)
	assert.Equal(t, int64(6), stage.Stats().GetInputCount())
	assert.Equal(t, int64(4), stage.Stats().GetOutputCount())
}
