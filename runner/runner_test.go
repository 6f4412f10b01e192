package runner

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rulego/groupreduce/aggregator"
	"github.com/rulego/groupreduce/functions"
	"github.com/rulego/groupreduce/logger"
	"github.com/rulego/groupreduce/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var salesSchema = schema.RecordOf("sales",
	schema.NewField("id", schema.Of(schema.Long)),
	schema.NewField("dept", schema.Of(schema.String)),
	schema.NewField("amt", schema.NullableOf(schema.Of(schema.Long))),
)

func sale(id int64, dept string, amt interface{}) *schema.Record {
	return schema.NewBuilder(salesSchema).Set("id", id).Set("dept", dept).Set("amt", amt).MustBuild()
}

func quiet() Option {
	return WithLogger(logger.NewDiscardLogger())
}

func TestRun_SumByDept(t *testing.T) {
	records := []*schema.Record{
		sale(1, "A", int64(10)),
		sale(2, "B", int64(5)),
		sale(3, "A", int64(20)),
	}
	for n := 1; n <= 5; n++ {
		t.Run(fmt.Sprintf("partitions=%d", n), func(t *testing.T) {
			g := aggregator.NewGroupBy([]string{"dept"}, []functions.Descriptor{
				{Name: "total", Kind: functions.Sum, Field: "amt"},
				{Name: "avg", Kind: functions.Avg, Field: "amt"},
			}, aggregator.WithLogger(logger.NewDiscardLogger()))
			out, err := New(g, WithPartitions(n), quiet()).Run(context.Background(), records)
			require.NoError(t, err)
			require.Len(t, out, 2)
			assert.Equal(t, "A", out[0].Get("dept"))
			assert.Equal(t, int64(30), out[0].Get("total"))
			assert.Equal(t, 15.0, out[0].Get("avg"))
			assert.Equal(t, "B", out[1].Get("dept"))
			assert.Equal(t, int64(5), out[1].Get("total"))
		})
	}
}

func TestRun_CountAll(t *testing.T) {
	var records []*schema.Record
	for i := 0; i < 100; i++ {
		records = append(records, sale(int64(i), string(rune('A'+i%3)), int64(i)))
	}
	g := aggregator.NewGroupBy(nil, []functions.Descriptor{
		{Name: "n", Kind: functions.Count, Field: functions.Wildcard},
		{Name: "total", Kind: functions.Sum, Field: "amt"},
	})
	out, err := New(g, WithPartitions(7), quiet()).Run(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(100), out[0].Get("n"))
	assert.Equal(t, int64(4950), out[0].Get("total"))
}

func TestRun_DedupMax(t *testing.T) {
	records := []*schema.Record{
		sale(1, "x", int64(5)),
		sale(2, "x", int64(9)),
		sale(3, "y", int64(1)),
	}
	for n := 1; n <= 3; n++ {
		d := aggregator.NewDedup([]string{"dept"}, &aggregator.Filter{Kind: functions.SelectMax, Field: "amt"})
		out, err := New(d, WithPartitions(n), quiet()).Run(context.Background(), records)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, int64(2), out[0].Get("id"))
		assert.Equal(t, int64(3), out[1].Get("id"))
		assert.Equal(t, "sales.dedup", out[0].Schema().Name())
	}
}

func TestRun_DedupWithoutFilterIsDeterministic(t *testing.T) {
	var records []*schema.Record
	for i := 0; i < 30; i++ {
		records = append(records, sale(int64(i), string(rune('a'+i%4)), nil))
	}
	var first []interface{}
	for i := 0; i < 10; i++ {
		d := aggregator.NewDedup([]string{"dept"}, nil)
		out, err := New(d, WithPartitions(4), quiet()).Run(context.Background(), records)
		require.NoError(t, err)
		require.Len(t, out, 4)
		var got []interface{}
		for _, r := range out {
			got = append(got, r.Get("id"))
		}
		if first == nil {
			first = got
		}
		assert.Equal(t, first, got)
	}
}

func TestRun_DedupWithoutUniqueFieldsKeepsEveryRecord(t *testing.T) {
	records := []*schema.Record{
		sale(1, "x", int64(1)),
		sale(1, "x", int64(1)),
		sale(2, "y", nil),
	}
	out, err := New(aggregator.NewDedup(nil, nil), WithPartitions(2), quiet()).Run(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i, r := range out {
		assert.True(t, records[i].Equal(r))
	}
}

func TestRun_ConfigErrorIsFatal(t *testing.T) {
	g := aggregator.NewGroupBy([]string{"region"}, []functions.Descriptor{
		{Name: "total", Kind: functions.Sum, Field: "amt"},
	}, aggregator.WithLogger(logger.NewDiscardLogger()))
	_, err := New(g, WithPartitions(3), quiet()).Run(context.Background(), []*schema.Record{
		sale(1, "A", int64(1)),
		sale(2, "B", int64(2)),
	})
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
	assert.False(t, IsConfigError(errors.New("other")))
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := aggregator.NewGroupBy([]string{"dept"}, []functions.Descriptor{
		{Name: "n", Kind: functions.Count, Field: functions.Wildcard},
	})
	_, err := New(g, WithPartitions(2), quiet()).Run(ctx, []*schema.Record{sale(1, "A", nil)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Empty(t *testing.T) {
	g := aggregator.NewGroupBy([]string{"dept"}, []functions.Descriptor{
		{Name: "n", Kind: functions.Count, Field: functions.Wildcard},
	})
	r := New(g, WithPartitions(0), quiet())
	assert.True(t, r.Partitions() > 0)
	out, err := r.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRun_Stats(t *testing.T) {
	stats := NewStatsCollector()
	g := aggregator.NewGroupBy([]string{"dept"}, []functions.Descriptor{
		{Name: "total", Kind: functions.Sum, Field: "amt"},
	}, aggregator.WithLogger(logger.NewDiscardLogger()))
	r := New(g, WithPartitions(3), WithStats(stats), quiet())
	assert.Same(t, stats, r.Stats())

	_, err := r.Run(context.Background(), []*schema.Record{
		sale(1, "A", int64(10)),
		sale(2, "B", int64(5)),
		sale(3, "A", int64(20)),
	})
	require.NoError(t, err)
	basic := stats.GetBasicStats()
	assert.Equal(t, int64(1), basic[RunCount])
	assert.Equal(t, int64(0), basic[FailedRuns])
	assert.Equal(t, int64(3), basic[InputCount])
	assert.Equal(t, int64(3), basic[PartialCount])
	assert.Equal(t, int64(1), basic[MergeCount])
	assert.Equal(t, int64(2), basic[OutputCount])
	assert.InDelta(t, 33.33, stats.GetDetailedStats()[ReductionRate], 0.01)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx, []*schema.Record{sale(4, "C", nil)})
	require.Error(t, err)
	assert.Equal(t, int64(2), stats.GetBasicStats()[RunCount])
	assert.Equal(t, int64(1), stats.GetBasicStats()[FailedRuns])

	stats.Reset()
	assert.Equal(t, int64(0), stats.GetInputCount())
	assert.Equal(t, float64(0), stats.GetDetailedStats()[ReductionRate])
}
