package document

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedCounter struct {
	mu     sync.Mutex
	counts map[Type]int64
	err    error
	calls  int
}

func (c *fixedCounter) CountDocuments(_ context.Context, t Type) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return 0, c.err
	}
	return c.counts[t], nil
}

func clockAt(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.March, 14, 10, 0, 0, 0, time.UTC)
	}
}

func TestGenerator_FirstNumberPerType(t *testing.T) {
	counter := &fixedCounter{counts: map[Type]int64{}}
	gen := NewGenerator(DefaultNumberingConfig(), counter, WithClock(clockAt(2024)))

	want := map[Type]string{
		TypeRequisition: "1/-077/SPB/2024",
		TypeApproval:    "1/-077/SPPB/2024",
		TypeHandoverIn:  "027/00001/BAST-M/2024",
		TypeHandoverOut: "027/1/BAST-K/2024",
	}
	for _, typ := range AllTypes() {
		t.Run(string(typ), func(t *testing.T) {
			got, err := gen.Next(context.Background(), typ)
			require.NoError(t, err)
			assert.Equal(t, want[typ], got)
		})
	}
}

func TestGenerator_Padding(t *testing.T) {
	counter := &fixedCounter{counts: map[Type]int64{TypeHandoverIn: 4}}
	gen := NewGenerator(DefaultNumberingConfig(), counter, WithClock(clockAt(2024)))

	got, err := gen.Next(context.Background(), TypeHandoverIn)
	require.NoError(t, err)
	assert.Equal(t, "027/00005/BAST-M/2024", got)
}

func TestGenerator_StartNumberOffset(t *testing.T) {
	cfg := DefaultNumberingConfig()
	cfg[TypeRequisition] = TypeConfig{Format: "{number}/SPB/{year}", StartNumber: 100, Padding: 0}
	counter := &fixedCounter{counts: map[Type]int64{TypeRequisition: 7}}
	gen := NewGenerator(cfg, counter, WithClock(clockAt(2025)))

	got, err := gen.Next(context.Background(), TypeRequisition)
	require.NoError(t, err)
	assert.Equal(t, "107/SPB/2025", got)
}

func TestGenerator_UnknownType(t *testing.T) {
	counter := &fixedCounter{counts: map[Type]int64{}}
	gen := NewGenerator(DefaultNumberingConfig(), counter)

	_, err := gen.Next(context.Background(), Type("KWITANSI"))
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, Type("KWITANSI"), cfgErr.Type)
	assert.Equal(t, 0, counter.calls, "counter must not be consulted for unknown types")
}

func TestGenerator_CounterFailure(t *testing.T) {
	cause := errors.New("connection refused")
	counter := &fixedCounter{err: cause}
	gen := NewGenerator(DefaultNumberingConfig(), counter)

	_, err := gen.Next(context.Background(), TypeApproval)
	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, TypeApproval, storageErr.Type)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, counter.calls, "no retry on counter failure")
}

// Concurrent callers that observe the same count get the same number.
// Uniqueness is the job of the document store, not the generator.
func TestGenerator_ConcurrentCallsShareNumber(t *testing.T) {
	counter := &fixedCounter{counts: map[Type]int64{TypeRequisition: 11}}
	gen := NewGenerator(DefaultNumberingConfig(), counter, WithClock(clockAt(2024)))

	const callers = 8
	results := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n, err := gen.Next(context.Background(), TypeRequisition)
			assert.NoError(t, err)
			results[i] = n
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "12/-077/SPB/2024", r)
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		number  int64
		padding int
		year    int
		want    string
	}{
		{"spb format", "{number}/-077/SPB/{year}", 12, 0, 2024, "12/-077/SPB/2024"},
		{"padding", "{number}", 5, 5, 2024, "00005"},
		{"number wider than padding", "{number}", 123456, 3, 2024, "123456"},
		{"no tokens", "STATIC", 1, 0, 2024, "STATIC"},
		{"repeated tokens", "{year}-{number}-{year}", 3, 2, 2030, "2030-03-2030"},
		{"year only", "SPB/{year}", 9, 0, 2024, "SPB/2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.format, tt.number, tt.padding, tt.year))
		})
	}
}

func TestNumberingConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultNumberingConfig().Validate())

	missing := DefaultNumberingConfig()
	delete(missing, TypeHandoverOut)
	assert.Error(t, missing.Validate())

	empty := DefaultNumberingConfig()
	empty[TypeApproval] = TypeConfig{Format: " ", StartNumber: 1}
	assert.Error(t, empty.Validate())

	wide := DefaultNumberingConfig()
	wide[TypeApproval] = TypeConfig{Format: "{number}", StartNumber: 1, Padding: MaxPadding + 1}
	assert.Error(t, wide.Validate())

	negative := DefaultNumberingConfig()
	negative[TypeApproval] = TypeConfig{Format: "{number}", StartNumber: -1}
	assert.Error(t, negative.Validate())

	same := DefaultNumberingConfig()
	same[TypeHandoverOut] = TypeConfig{Format: same[TypeHandoverIn].Format, StartNumber: 1}
	err := same.Validate()
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, TypeHandoverOut, cfgErr.Type)
}

func TestParseType(t *testing.T) {
	typ, ok := ParseType("bast_in")
	assert.True(t, ok)
	assert.Equal(t, TypeHandoverIn, typ)

	_, ok = ParseType("invoice")
	assert.False(t, ok)
}
