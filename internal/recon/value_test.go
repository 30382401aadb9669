package recon

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValue_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind Kind
		wantStr  string
	}{
		{"null", `null`, KindEmpty, ""},
		{"string", `"Yamada"`, KindString, "Yamada"},
		{"empty string", `""`, KindString, ""},
		{"integer", `45000`, KindNumber, "45000"},
		{"decimal keeps precision", `0.1000000000000000055511151231257827`, KindNumber, "0.1000000000000000055511151231257827"},
		{"trailing zeros trimmed", `1.50`, KindNumber, "1.5"},
		{"exponent", `1e3`, KindNumber, "1000"},
		{"true", `true`, KindString, "true"},
		{"false", `false`, KindString, "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Value
			require.NoError(t, json.Unmarshal([]byte(tt.input), &v))
			assert.Equal(t, tt.wantKind, v.Kind())
			assert.Equal(t, tt.wantStr, v.String())
		})
	}
}

func TestValue_UnmarshalJSON_RejectsContainers(t *testing.T) {
	var v Value
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &v))
}

func TestValue_UnmarshalJSON_ExponentBound(t *testing.T) {
	for _, input := range []string{`1e30000000`, `1e2000000000`, `1e-5000`, `-2.5E+1002`} {
		var v Value
		err := json.Unmarshal([]byte(input), &v)
		assert.ErrorIs(t, err, errExponentRange, input)
	}

	var v Value
	require.NoError(t, json.Unmarshal([]byte(`1e1000`), &v))
	assert.Equal(t, KindNumber, v.Kind())
	require.NoError(t, json.Unmarshal([]byte(`1e-1000`), &v))
	assert.Equal(t, KindNumber, v.Kind())
}

func TestValue_HugeExponentTextStaysCheap(t *testing.T) {
	huge := Text("1e30000000")

	start := time.Now()
	_, ok := huge.Decimal()
	assert.False(t, ok, "out-of-range exponent is not numeric")
	assert.Equal(t, "1e30000000", NormalizeKey(huge))
	assert.False(t, ValuesEqual(huge, Int(1), CompareOptions{}))
	assert.False(t, ValuesEqual(huge, Int(1), CompareOptions{TreatMissingAsZero: true}))
	assert.True(t, ValuesEqual(huge, Text(" 1e30000000 "), CompareOptions{TreatMissingAsZero: true}))
	assert.Less(t, time.Since(start), time.Second)
}

func TestValue_MarshalJSON(t *testing.T) {
	row := Row{
		"name": Text("Ito"),
		"ot":   MustNumber("40000.00"),
		"memo": Empty(),
	}
	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Ito","ot":40000,"memo":null}`, string(data))
}

func TestValue_Decimal(t *testing.T) {
	tests := []struct {
		name   string
		v      Value
		wantOK bool
		want   string
	}{
		{"number", Int(12), true, "12"},
		{"numeric text", Text(" 12.5 "), true, "12.5"},
		{"signed text", Text("-3"), true, "-3"},
		{"leading dot", Text(".5"), true, "0.5"},
		{"scientific", Text("2E2"), true, "200"},
		{"thousands separator is not numeric", Text("1,000"), false, ""},
		{"currency is not numeric", Text("$5"), false, ""},
		{"blank", Text("   "), false, ""},
		{"empty", Empty(), false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := tt.v.Decimal()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, d.String())
			}
		})
	}
}

func TestValue_Equal(t *testing.T) {
	assert.True(t, MustNumber("1.50").Equal(MustNumber("1.5")))
	assert.True(t, Empty().Equal(Value{}))
	assert.False(t, Text("1").Equal(Int(1)))
	assert.False(t, Text("").Equal(Empty()))
}

func TestValue_UnmarshalYAML(t *testing.T) {
	var row Row
	require.NoError(t, yaml.Unmarshal([]byte("id: A\namt: 100\nrate: 0.25\nnote: ~\nflag: true\n"), &row))
	assert.True(t, row.Equal(Row{
		"id":   Text("A"),
		"amt":  Int(100),
		"rate": MustNumber("0.25"),
		"flag": Text("true"),
	}))

	assert.Error(t, yaml.Unmarshal([]byte("amt: .inf\n"), &row))
	assert.Error(t, yaml.Unmarshal([]byte("amt: .nan\n"), &row))
	assert.Error(t, yaml.Unmarshal([]byte("bad: [1, 2]\n"), &row))
}

func TestRow_Equal_AbsentEqualsEmpty(t *testing.T) {
	a := Row{"id": Text("1"), "memo": Empty()}
	b := Row{"id": Text("1")}
	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.False(t, a.Equal(Row{"id": Text("2")}))
}

func TestHeadersOf(t *testing.T) {
	rows := []Row{
		{"emp": Text("1"), "name": Text("a")},
		{"emp": Text("2"), "ot": Int(1)},
	}
	assert.Equal(t, []string{"emp", "name", "ot"}, HeadersOf(rows))
}
