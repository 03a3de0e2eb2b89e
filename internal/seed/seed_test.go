package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakeCounters struct {
	values map[string]int64
	err    error
}

func (f *fakeCounters) Ensure(_ context.Context, name string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.values[name]; !ok {
		f.values[name] = 0
	}
	return nil
}

func (f *fakeCounters) Current(_ context.Context, name string) (int64, error) {
	return f.values[name], nil
}

func TestCreateDefaultData_KeepsExistingValue(t *testing.T) {
	counters := &fakeCounters{values: map[string]int64{"userid": 41}}
	assert.NoError(t, CreateDefaultData(context.Background(), counters, "userid", zerolog.Nop()))
	assert.Equal(t, int64(41), counters.values["userid"])

	assert.NoError(t, CreateDefaultData(context.Background(), counters, "other", zerolog.Nop()))
	assert.Equal(t, int64(0), counters.values["other"])
}

func TestCreateDefaultData_PropagatesErrors(t *testing.T) {
	counters := &fakeCounters{values: map[string]int64{}, err: errors.New("db down")}
	assert.Error(t, CreateDefaultData(context.Background(), counters, "userid", zerolog.Nop()))
}
