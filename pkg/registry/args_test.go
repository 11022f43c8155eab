package registry_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/aretw0/fsmagent/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs_Int(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    int
		wantErr bool
	}{
		{"Int", 95, 95, false},
		{"Int64", int64(7), 7, false},
		{"Integral Float", 95.0, 95, false},
		{"JSON Number", json.Number("42"), 42, false},
		{"JSON Number With Fraction Digits", json.Number("95.0"), 95, false},
		{"JSON Number Exponent", json.Number("1e2"), 100, false},
		{"Fractional Float", 9.5, 0, true},
		{"Float Above Int Range", 1e19, 0, true},
		{"Float Below Int Range", -1e19, 0, true},
		{"Positive Infinity", math.Inf(1), 0, true},
		{"NaN", math.NaN(), 0, true},
		{"JSON Number Above Int Range", json.Number("1e19"), 0, true},
		{"JSON Number Fractional", json.Number("9.5"), 0, true},
		{"String", "95", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := registry.Args{"score": tt.value}.Int("score")
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArgs_Missing(t *testing.T) {
	args := registry.Args{}

	_, err := args.String("reason")
	var argErr *domain.ArgumentError
	require.True(t, errors.As(err, &argErr))
	assert.Equal(t, "reason", argErr.Key)
	assert.Equal(t, `argument "reason": is required`, err.Error())

	_, err = args.Bool("flag")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = args.Float("ratio")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestArgs_Optional(t *testing.T) {
	reason, err := registry.Args{}.StringOr("reason", "")
	require.NoError(t, err)
	assert.Empty(t, reason)

	_, err = registry.Args{"reason": 3}.StringOr("reason", "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestArgs_FloatAndBool(t *testing.T) {
	args := registry.Args{"ratio": 3, "ok": true, "bad": "yes"}

	f, err := args.Float("ratio")
	require.NoError(t, err)
	assert.Equal(t, 3.0, f)

	b, err := args.Bool("ok")
	require.NoError(t, err)
	assert.True(t, b)

	_, err = args.Bool("bad")
	assert.EqualError(t, err, `argument "bad": expected boolean (got string)`)
}

func TestArgs_Decode(t *testing.T) {
	var in struct {
		Score  int    `mapstructure:"score"`
		Reason string `mapstructure:"reason"`
	}

	err := registry.Args{"score": 95.0, "reason": "Keyword analysis"}.Decode(&in)
	require.NoError(t, err)
	assert.Equal(t, 95, in.Score)
	assert.Equal(t, "Keyword analysis", in.Reason)

	err = registry.Args{"score": map[string]any{"nested": 1}}.Decode(&in)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
