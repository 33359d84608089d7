package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTankSet(t *testing.T) {
	set, err := DecodeTankSet([]byte(`{
		"tank1": {"tds": 300, "ph": 7.5, "turbidity": 1},
		"tank2": {"tds": "1200", "ph": 9.5, "turbidity": "10.0", "temperature": 21}
	}`))
	require.NoError(t, err)

	assert.Equal(t, TankSet{
		Tank1: Reading{TDS: 300, PH: 7.5, Turbidity: 1},
		Tank2: Reading{TDS: 1200, PH: 9.5, Turbidity: 10},
	}, set)
}

func TestDecodeTankSet_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"empty object", `{}`, []string{"tank1", "tank2"}},
		{"tank not an object", `{"tank1": 5, "tank2": {"tds":1,"ph":1,"turbidity":1}}`, []string{"tank1"}},
		{"null value", `{"tank1": {"tds": null, "ph": 7, "turbidity": 1}, "tank2": {"tds":1,"ph":1,"turbidity":1}}`, []string{"tank1.tds"}},
		{"non numeric string", `{"tank1": {"tds": 1, "ph": "neutral", "turbidity": 1}, "tank2": {"tds":1,"ph":1,"turbidity":"NaN"}}`, []string{"tank1.ph", "tank2.turbidity"}},
		{"boolean", `{"tank1": {"tds": true, "ph": 7, "turbidity": 1}, "tank2": {"tds":1,"ph":1,"turbidity":1}}`, []string{"tank1.tds"}},
		{"top level array", `[]`, []string{"body"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeTankSet([]byte(tc.body))
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)

			var fields []string
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Equal(t, tc.fields, fields)
		})
	}
}

func TestDecodeTankSet_Malformed(t *testing.T) {
	_, err := DecodeTankSet([]byte(`{"tank1":`))
	assert.True(t, errors.Is(err, ErrMalformedBody))

	_, err = DecodeTankSet(nil)
	assert.True(t, errors.Is(err, ErrMalformedBody))
}

func TestDecodeObject(t *testing.T) {
	obj, err := DecodeObject([]byte(`{"status":"Cleaned","by":{"name":"ops"}}`))
	require.NoError(t, err)
	assert.Equal(t, "Cleaned", obj["status"])

	_, err = DecodeObject([]byte(`"Cleaned"`))
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = DecodeObject([]byte(`null`))
	assert.True(t, errors.As(err, &verr))

	_, err = DecodeObject([]byte(`{`))
	assert.True(t, errors.Is(err, ErrMalformedBody))
}

func TestZeroTankSetJSON(t *testing.T) {
	b, err := json.Marshal(TankSet{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tank1":{"tds":0,"ph":0,"turbidity":0},"tank2":{"tds":0,"ph":0,"turbidity":0}}`, string(b))
}

func TestTanksOrder(t *testing.T) {
	set := TankSet{Tank1: Reading{TDS: 1}, Tank2: Reading{TDS: 2}}
	tanks := set.Tanks()
	require.Len(t, tanks, 2)
	assert.Equal(t, Tank1, tanks[0].ID)
	assert.Equal(t, 1.0, tanks[0].Reading.TDS)
	assert.Equal(t, Tank2, tanks[1].ID)
}
