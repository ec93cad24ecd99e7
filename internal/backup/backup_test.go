package backup

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/homeclean/internal/db"
)

func sampleSnapshot() db.Snapshot {
	return db.Snapshot{
		db.AreaTypes:      {json.RawMessage(`{"id":1,"name":"Kitchen"}`)},
		db.AreaGroupAreas: {json.RawMessage(`{"groupId":1,"areaId":2}`)},
		db.ItemParts: {
			json.RawMessage(`{"id":1,"name":"Descale","itemId":1,"freqDays":30,"lastDoneAt":"2024-03-01T09:00:00Z"}`),
			json.RawMessage(`{"id":2,"name":"Polish","itemId":1,"freqDays":7,"lastDoneAt":null}`),
		},
		db.Items: {},
	}
}

func assertSameSnapshot(t *testing.T, want, got db.Snapshot) {
	t.Helper()
	require.Len(t, got, len(want))
	for name, records := range want {
		require.Len(t, got[name], len(records), name)
		for i := range records {
			assert.JSONEq(t, string(records[i]), string(got[name][i]))
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []Format{JSON, YAML} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, sampleSnapshot(), f))

			got, err := Decode(&buf, f)
			require.NoError(t, err)
			assertSameSnapshot(t, sampleSnapshot(), got)
		})
	}
}

func TestEncodeJSONIsIndented(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, db.Snapshot{db.AreaTypes: {json.RawMessage(`{"id":1,"name":"Kitchen"}`)}}, JSON))
	assert.Contains(t, buf.String(), "\n  \"areaTypes\": [\n")
}

func TestEncodeYAMLKeepsTimestampsAsStrings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleSnapshot(), YAML))
	assert.Contains(t, buf.String(), `"2024-03-01T09:00:00Z"`)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	_, err := Decode(strings.NewReader(`[1,2,3]`), JSON)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Decode(strings.NewReader(`null`), JSON)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Decode(strings.NewReader("areaTypes: 3\n"), YAML)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Decode(strings.NewReader(`{}`), Format("xml"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", JSON},
		{"json", JSON},
		{"YAML", YAML},
		{"yml", YAML},
	}
	for _, tc := range tests {
		got, err := ParseFormat(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}

	_, err := ParseFormat("csv")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, YAML, FormatFromPath("/tmp/out.yaml"))
	assert.Equal(t, YAML, FormatFromPath("out.YML"))
	assert.Equal(t, JSON, FormatFromPath("home-clean-backup.json"))
	assert.Equal(t, JSON, FormatFromPath("noext"))
}

func TestName(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 30, 5, 42_000_000, time.FixedZone("CET", 3600))
	assert.Equal(t, "homeclean-backup-20240301T083005.042Z.yaml", Name(ts, 0, YAML))
	assert.Equal(t, "homeclean-backup-20240301T083005.042Z-2.json", Name(ts, 2, JSON))
}
